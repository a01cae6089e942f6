// Package qq parses QQ's native TXT chat export: a timestamp+sender header
// line followed by one or more content lines, blocks separated by a blank
// line (spec.md §4.2 multi-line continuation).
package qq

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

const FormatID = "qq_native_txt"

func init() {
	format.Register(format.Descriptor{
		ID:          FormatID,
		DisplayName: "QQ native chat export (TXT)",
		Platform:    "qq",
		Priority:    15,
		Extensions:  []string{"txt"},
		Signatures: []*regexp.Regexp{
			regexp.MustCompile(`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2} .+\(\d+\)$`),
		},
	})
}

var headerRe = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2}) (\d{2}):(\d{2}):(\d{2}) (.+)\((\d+)\)$`)
var systemRe = regexp.MustCompile(`(撤回了一条消息|加入本群|退出本群|被管理员禁言|修改群名片)`)

type Parser struct{}

func New() *Parser { return &Parser{} }

func (p *Parser) FormatID() string { return FormatID }

func (p *Parser) Parse(path string, opts common.Options, out chan<- common.Event) {
	defer close(out)

	f, err := os.Open(path)
	if err != nil {
		out <- common.ErrorEvent(fmt.Errorf("qq: %w", err))
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
	var pendingSender string
	var pendingTs int64
	havePending := false

	emitPending := func() {
		if !havePending {
			return
		}
		text := content.Flush()
		kind := corpusstore.KindText
		if systemRe.MatchString(text) {
			kind = corpusstore.KindSystem
		}
		msg := common.ParsedMessage{SenderPlatformID: pendingSender, SenderDisplayName: pendingSender, Ts: pendingTs, Type: kind}
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

		if m := headerRe.FindStringSubmatch(line); m != nil {
			emitPending()

			year, _ := strconv.Atoi(m[1])
			month, _ := strconv.Atoi(m[2])
			day, _ := strconv.Atoi(m[3])
			hour, _ := strconv.Atoi(m[4])
			minute, _ := strconv.Atoi(m[5])
			second, _ := strconv.Atoi(m[6])
			pendingSender = m[7]
			pendingTs = common.ToUTCSeconds(year, month, day, hour, minute, second, opts.Zone())
			havePending = true
			continue
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
			out <- common.ErrorEvent(fmt.Errorf("qq: canceled"))
			return
		}
	}
	emitPending()

	if err := scanner.Err(); err != nil {
		out <- common.ErrorEvent(fmt.Errorf("qq: %w", err))
		return
	}

	flush()
	emitProgress(true)
	out <- common.DoneEvent(common.Done{MessageCount: messageCount, MemberCount: len(members)})
}
