package common

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// meridiemTable maps every locale-specific AM/PM marker the parser set
// recognizes (spec.md §4.2: "locale-specific AM/PM, 上午/下午, 午前/午後") to
// a canonical PM flag.
var meridiemTable = map[string]bool{
	"am": false, "AM": false,
	"pm": true, "PM": true,
	"上午": false, "下午": true, // Chinese (WeChat, QQ)
	"午前": false, "午後": true, // Japanese (LINE)
	"오전": false, "오후": true, // Korean (LINE)
}

// SplitMeridiem extracts a recognized meridiem marker from s, returning the
// remaining string with it removed and trimmed, plus whether it denoted PM.
// ok is false if no marker was found (24-hour clock assumed by caller).
func SplitMeridiem(s string) (rest string, isPM bool, ok bool) {
	for marker, pm := range meridiemTable {
		if idx := strings.Index(s, marker); idx >= 0 {
			rest = strings.TrimSpace(s[:idx] + s[idx+len(marker):])
			return rest, pm, true
		}
	}
	return s, false, false
}

// ParseClock parses an hour:minute (optionally with a locale meridiem
// marker anywhere in the string) into 24-hour hour/minute values.
func ParseClock(raw string) (hour, minute int, err error) {
	s := strings.TrimSpace(raw)
	rest, isPM, hasMeridiem := SplitMeridiem(s)
	if hasMeridiem {
		s = rest
	}

	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("common: malformed clock time %q", raw)
	}
	hour, err = strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, fmt.Errorf("common: malformed hour in %q: %w", raw, err)
	}
	minute, err = strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, fmt.Errorf("common: malformed minute in %q: %w", raw, err)
	}

	if hasMeridiem {
		hour = hour % 12
		if isPM {
			hour += 12
		}
	}
	return hour, minute, nil
}

// ToUTCSeconds converts a local wall-clock date+time in loc to UTC seconds
// since epoch (spec.md §4.2 Time resolution).
func ToUTCSeconds(year, month, day, hour, minute, second int, loc *time.Location) int64 {
	t := time.Date(year, time.Month(month), day, hour, minute, second, 0, loc)
	return t.Unix()
}
