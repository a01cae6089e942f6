package pages

import (
	"html/template"
	"strconv"
)

func htmlEscape(s string) string {
	return template.HTMLEscapeString(s)
}

// ParseTimeFilter reads optional "startTs"/"endTs" query parameters (unix
// seconds) into an analytics.TimeFilter-shaped pair of pointers.
func ParseTimeFilter(startTsParam, endTsParam string) (startTs, endTs *int64) {
	if v, err := strconv.ParseInt(startTsParam, 10, 64); err == nil {
		startTs = &v
	}
	if v, err := strconv.ParseInt(endTsParam, 10, 64); err == nil {
		endTs = &v
	}
	return startTs, endTs
}
