// Package wechattxt parses the line-oriented TXT export shape produced by
// third-party WeChat export tools (spec.md §6: "third-party QQ and WeChat
// export tool formats"), distinct from the structured DB JSON dump handled
// by internal/parser/wechat.
package wechattxt

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"time"

	"github.com/chatlab/corpus/internal/corpusstore"
	"github.com/chatlab/corpus/internal/format"
	"github.com/chatlab/corpus/internal/parser/common"
)

const FormatID = "wechat_thirdparty_txt"

func init() {
	format.Register(format.Descriptor{
		ID:          FormatID,
		DisplayName: "WeChat export tool (TXT)",
		Platform:    "wechat",
		Priority:    20,
		Extensions:  []string{"txt"},
		Signatures: []*regexp.Regexp{
			regexp.MustCompile(`^消息记录$`),
			regexp.MustCompile(`^-+\s*\d{4}年\d{1,2}月\d{1,2}日\s*-+$`),
		},
	})
}

var dateSeparatorRe = regexp.MustCompile(`^-+\s*(\d{4})年(\d{1,2})月(\d{1,2})日\s*-+$`)
var senderLineRe = regexp.MustCompile(`^(.+?)\s+(\d{2}):(\d{2}):(\d{2})$`)

type Parser struct{}

func New() *Parser { return &Parser{} }

func (p *Parser) FormatID() string { return FormatID }

func (p *Parser) Parse(path string, opts common.Options, out chan<- common.Event) {
	defer close(out)

	f, err := os.Open(path)
	if err != nil {
		out <- common.ErrorEvent(fmt.Errorf("wechattxt: %w", err))
		return
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	out <- common.MetaEvent(common.Meta{Name: "", Platform: "wechat", ChatType: corpusstore.ChatTypeGroup})
	out <- common.MembersEvent(nil)

	members := map[string]bool{}
	batch := make([]common.ParsedMessage, 0, opts.EffectiveBatchSize())
	messageCount := 0
	lastProgress := time.Now()

	flush := func() {
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
		out <- common.ProgressEvent(common.Progress{Phase: "parsing", MessagesProcessed: messageCount})
		lastProgress = time.Now()
	}

	var carry common.DateCarry
	var content common.ContinuationBuffer
	var pendingSender string
	var pendingTs int64
	havePending := false

	emitPending := func() {
		if !havePending {
			return
		}
		text := content.Flush()
		msg := common.ParsedMessage{SenderPlatformID: pendingSender, SenderDisplayName: pendingSender, Ts: pendingTs, Type: corpusstore.KindText}
		if text != "" {
			msg.Content = &text
		}
		batch = append(batch, msg)
		messageCount++
		members[pendingSender] = true
		havePending = false
	}

	for scanner.Scan() {
		line := scanner.Text()

		if line == "消息记录" {
			continue
		}
		if m := dateSeparatorRe.FindStringSubmatch(line); m != nil {
			emitPending()
			year, _ := strconv.Atoi(m[1])
			month, _ := strconv.Atoi(m[2])
			day, _ := strconv.Atoi(m[3])
			carry.Set(year, month, day)
			continue
		}
		if m := senderLineRe.FindStringSubmatch(line); m != nil {
			if year, month, day, ok := carry.Get(); ok {
				emitPending()
				hour, _ := strconv.Atoi(m[2])
				minute, _ := strconv.Atoi(m[3])
				second, _ := strconv.Atoi(m[4])
				pendingSender = m[1]
				pendingTs = common.ToUTCSeconds(year, month, day, hour, minute, second, opts.Zone())
				havePending = true
				continue
			}
		}
		if line == "" {
			continue
		}
		content.Add(line)

		if len(batch) >= opts.EffectiveBatchSize() {
			flush()
		}
		emitProgress(false)
		if opts.Canceled() {
			out <- common.ErrorEvent(fmt.Errorf("wechattxt: canceled"))
			return
		}
	}
	emitPending()

	if err := scanner.Err(); err != nil {
		out <- common.ErrorEvent(fmt.Errorf("wechattxt: %w", err))
		return
	}

	flush()
	emitProgress(true)
	out <- common.DoneEvent(common.Done{MessageCount: messageCount, MemberCount: len(members)})
}
