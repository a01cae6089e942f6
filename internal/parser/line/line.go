// Package line parses LINE's native TXT chat export format (spec.md §4.2,
// Scenario A).
package line

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/chatlab/corpus/internal/corpusstore"
	"github.com/chatlab/corpus/internal/format"
	"github.com/chatlab/corpus/internal/parser/common"
)

const FormatID = "line"

func init() {
	format.Register(format.Descriptor{
		ID:          FormatID,
		DisplayName: "LINE chat history",
		Platform:    "line",
		Priority:    10,
		Extensions:  []string{"txt"},
		Signatures: []*regexp.Regexp{
			regexp.MustCompile(`^\[LINE\] Chat history`),
		},
	})
}

var headerRe = regexp.MustCompile(`^\[LINE\] Chat history (in|with) (.+)$`)
var dateHeaderRe = regexp.MustCompile(`^(\d{4})/(\d{2})/(\d{2})(?:\s+\S+)?$`)

// systemTokens maps LINE's bracketed non-text tokens, across its
// English/Japanese/Chinese/Korean export variants, to the uniform kind enum.
var systemTokens = map[string]corpusstore.MessageKind{
	"[Photo]": corpusstore.KindImage, "[写真]": corpusstore.KindImage, "[照片]": corpusstore.KindImage, "[사진]": corpusstore.KindImage,
	"[Video]": corpusstore.KindVideo, "[動画]": corpusstore.KindVideo, "[影片]": corpusstore.KindVideo, "[동영상]": corpusstore.KindVideo,
	"[Voice message]": corpusstore.KindVoice, "[ボイスメッセージ]": corpusstore.KindVoice, "[語音訊息]": corpusstore.KindVoice, "[음성 메시지]": corpusstore.KindVoice,
	"[File]": corpusstore.KindFile, "[ファイル]": corpusstore.KindFile, "[檔案]": corpusstore.KindFile, "[파일]": corpusstore.KindFile,
	"[Sticker]": corpusstore.KindSticker, "[スタンプ]": corpusstore.KindSticker, "[貼圖]": corpusstore.KindSticker, "[스티커]": corpusstore.KindSticker,
	"[Location]": corpusstore.KindLocation, "[位置情報]": corpusstore.KindLocation, "[位置]": corpusstore.KindLocation, "[위치]": corpusstore.KindLocation,
}

var systemEventRe = regexp.MustCompile(`(joined|left|was added|invited|changed|canceled|called|left the group|님이 나갔습니다|さんが退出しました|退出了群組)`)

type Parser struct{}

func New() *Parser { return &Parser{} }

func (p *Parser) FormatID() string { return FormatID }

func (p *Parser) Parse(path string, opts common.Options, out chan<- common.Event) {
	defer close(out)

	f, err := os.Open(path)
	if err != nil {
		out <- common.ErrorEvent(fmt.Errorf("line: %w", err))
		return
	}
	defer f.Close()

	info, _ := f.Stat()
	var totalBytes int64
	if info != nil {
		totalBytes = info.Size()
	}

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var groupName string
	chatType := corpusstore.ChatTypeGroup
	sawHeader := false

	members := map[string]common.ParsedMember{}
	var memberOrder []string

	var carry common.DateCarry
	batch := make([]common.ParsedMessage, 0, opts.EffectiveBatchSize())
	var bytesRead int64
	var messageCount int
	lastProgress := time.Now()

	flushBatch := func() {
		if len(batch) == 0 {
			return
		}
		out <- common.MessagesEvent(batch)
		batch = make([]common.ParsedMessage, 0, opts.EffectiveBatchSize())
	}

	emitProgress := func(force bool) {
		if !force && time.Since(lastProgress) < 250*time.Millisecond {
			return
		}
		out <- common.ProgressEvent(common.Progress{
			Phase:             "parsing",
			BytesProcessed:    bytesRead,
			TotalBytes:        totalBytes,
			MessagesProcessed: messageCount,
		})
		lastProgress = time.Now()
	}

	recordMember := func(name string) {
		if _, ok := members[name]; !ok {
			members[name] = common.ParsedMember{PlatformID: name, AccountName: name}
			memberOrder = append(memberOrder, name)
		}
	}

	for scanner.Scan() {
		line := scanner.Text()
		bytesRead += int64(len(line)) + 1

		if !sawHeader {
			if m := headerRe.FindStringSubmatch(line); m != nil {
				groupName = m[2]
				if m[1] == "with" {
					chatType = corpusstore.ChatTypePrivate
				}
				sawHeader = true
				out <- common.MetaEvent(common.Meta{Name: groupName, Platform: "line", ChatType: chatType})
				// LINE exports carry no roster section; members are
				// inferred from the sender field of each message
				// (spec.md §4.2: "may be empty if the format carries no
				// roster").
				out <- common.MembersEvent(nil)
			}
			continue
		}

		if strings.HasPrefix(line, "Saved on:") || line == "" {
			continue
		}

		if m := dateHeaderRe.FindStringSubmatch(line); m != nil {
			year, _ := strconv.Atoi(m[1])
			month, _ := strconv.Atoi(m[2])
			day, _ := strconv.Atoi(m[3])
			carry.Set(year, month, day)
			continue
		}

		fields := strings.SplitN(line, "\t", 3)
		if len(fields) < 2 {
			// Not a recognized line shape; treat as a ParseRecord-level skip.
			continue
		}

		year, month, day, ok := carry.Get()
		if !ok {
			continue
		}
		hour, minute, err := common.ParseClock(fields[0])
		if err != nil {
			continue
		}
		ts := common.ToUTCSeconds(year, month, day, hour, minute, 0, opts.Zone())

		sender := fields[1]
		recordMember(sender)

		var content string
		if len(fields) == 3 {
			content = fields[2]
		}

		kind := corpusstore.KindText
		if k, isToken := systemTokens[content]; isToken {
			kind = k
		} else if systemEventRe.MatchString(content) {
			kind = corpusstore.KindSystem
		}

		msg := common.ParsedMessage{
			SenderPlatformID:  sender,
			SenderDisplayName: sender,
			Ts:                ts,
			Type:              kind,
		}
		if kind == corpusstore.KindText || kind == corpusstore.KindSystem {
			c := content
			msg.Content = &c
		}
		batch = append(batch, msg)
		messageCount++

		if len(batch) >= opts.EffectiveBatchSize() {
			flushBatch()
		}
		emitProgress(false)

		if opts.Canceled() {
			out <- common.ErrorEvent(fmt.Errorf("line: canceled"))
			return
		}
	}
	if err := scanner.Err(); err != nil {
		out <- common.ErrorEvent(fmt.Errorf("line: %w", err))
		return
	}

	if !sawHeader {
		out <- common.ErrorEvent(fmt.Errorf("line: missing \"[LINE] Chat history\" header"))
		return
	}

	flushBatch()
	emitProgress(true)
	out <- common.DoneEvent(common.Done{MessageCount: messageCount, MemberCount: len(memberOrder)})
}
