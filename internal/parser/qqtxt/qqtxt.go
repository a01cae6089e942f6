// Package qqtxt parses the line-oriented TXT export shape produced by
// third-party QQ export tools, as distinct from QQ's own native export
// format handled by internal/parser/qq.
package qqtxt

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

const FormatID = "qq_thirdparty_txt"

func init() {
	format.Register(format.Descriptor{
		ID:          FormatID,
		DisplayName: "QQ export tool (TXT)",
		Platform:    "qq",
		Priority:    20,
		Extensions:  []string{"txt"},
		Signatures: []*regexp.Regexp{
			regexp.MustCompile(`^消息分组[:：]`),
		},
	})
}

var senderLineRe = regexp.MustCompile(`^(.+?)\s*<(\d+)>\s+(\d{4})-(\d{2})-(\d{2})\s+(\d{2}):(\d{2}):(\d{2})$`)

type Parser struct{}

func New() *Parser { return &Parser{} }

func (p *Parser) FormatID() string { return FormatID }

func (p *Parser) Parse(path string, opts common.Options, out chan<- common.Event) {
	defer close(out)

	f, err := os.Open(path)
	if err != nil {
		out <- common.ErrorEvent(fmt.Errorf("qqtxt: %w", err))
		return
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	out <- common.MetaEvent(common.Meta{Name: "", Platform: "qq", ChatType: corpusstore.ChatTypeGroup})
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

	var content common.ContinuationBuffer
	var pendingPlatformID string
	var pendingTs int64
	havePending := false

	emitPending := func() {
		if !havePending {
			return
		}
		text := content.Flush()
		msg := common.ParsedMessage{SenderPlatformID: pendingPlatformID, SenderDisplayName: pendingPlatformID, Ts: pendingTs, Type: corpusstore.KindText}
		if text != "" {
			msg.Content = &text
		}
		batch = append(batch, msg)
		messageCount++
		members[pendingPlatformID] = true
		havePending = false
	}

	for scanner.Scan() {
		line := scanner.Text()

		if m := senderLineRe.FindStringSubmatch(line); m != nil {
			emitPending()
			pendingPlatformID = m[2]
			year, _ := strconv.Atoi(m[3])
			month, _ := strconv.Atoi(m[4])
			day, _ := strconv.Atoi(m[5])
			hour, _ := strconv.Atoi(m[6])
			minute, _ := strconv.Atoi(m[7])
			second, _ := strconv.Atoi(m[8])
			pendingTs = common.ToUTCSeconds(year, month, day, hour, minute, second, opts.Zone())
			havePending = true
			continue
		}
		if line == "" || line == "消息分组:我的好友" {
			continue
		}
		content.Add(line)

		if len(batch) >= opts.EffectiveBatchSize() {
			flush()
		}
		emitProgress(false)
		if opts.Canceled() {
			out <- common.ErrorEvent(fmt.Errorf("qqtxt: canceled"))
			return
		}
	}
	emitPending()

	if err := scanner.Err(); err != nil {
		out <- common.ErrorEvent(fmt.Errorf("qqtxt: %w", err))
		return
	}

	flush()
	emitProgress(true)
	out <- common.DoneEvent(common.Done{MessageCount: messageCount, MemberCount: len(members)})
}
