// Package whatsapp parses WhatsApp's TXT chat export:
// "[M/D/YY, H:MM:SS AM/PM] Sender: message", with continuation lines that
// lack the bracketed timestamp prefix folded into the prior message.
package whatsapp

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

const FormatID = "whatsapp_txt"

func init() {
	format.Register(format.Descriptor{
		ID:          FormatID,
		DisplayName: "WhatsApp chat export (TXT)",
		Platform:    "whatsapp",
		Priority:    10,
		Extensions:  []string{"txt"},
		Signatures: []*regexp.Regexp{
			regexp.MustCompile(`^\[\d{1,2}/\d{1,2}/\d{2,4}, \d{1,2}:\d{2}(:\d{2})? ?(AM|PM)?\] .+:`),
		},
	})
}

var lineRe = regexp.MustCompile(`^\[(\d{1,2})/(\d{1,2})/(\d{2,4}), (\d{1,2}):(\d{2})(?::(\d{2}))? ?(AM|PM)?\] ([^:]+): (.*)$`)

var systemRe = regexp.MustCompile(`(joined using this group's invite link|added|left|changed the subject|changed this group's icon|Messages and calls are end-to-end encrypted)`)

var mediaTokenRe = regexp.MustCompile(`<Media omitted>|image omitted|video omitted|audio omitted|sticker omitted|document omitted|GIF omitted`)

type Parser struct{}

func New() *Parser { return &Parser{} }

func (p *Parser) FormatID() string { return FormatID }

func (p *Parser) Parse(path string, opts common.Options, out chan<- common.Event) {
	defer close(out)

	f, err := os.Open(path)
	if err != nil {
		out <- common.ErrorEvent(fmt.Errorf("whatsapp: %w", err))
		return
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	out <- common.MetaEvent(common.Meta{Name: "", Platform: "whatsapp", ChatType: corpusstore.ChatTypeGroup})
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

	classify := func(text string) (corpusstore.MessageKind, bool) {
		switch {
		case systemRe.MatchString(text):
			return corpusstore.KindSystem, true
		case mediaTokenRe.MatchString(text):
			return corpusstore.KindOther, true
		default:
			return corpusstore.KindText, true
		}
	}

	emitPending := func() {
		if !havePending {
			return
		}
		text := content.Flush()
		kind, _ := classify(text)
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

		if m := lineRe.FindStringSubmatch(line); m != nil {
			emitPending()

			month, _ := strconv.Atoi(m[1])
			day, _ := strconv.Atoi(m[2])
			year, _ := strconv.Atoi(m[3])
			if year < 100 {
				year += 2000
			}
			hour, _ := strconv.Atoi(m[4])
			minute, _ := strconv.Atoi(m[5])
			second := 0
			if m[6] != "" {
				second, _ = strconv.Atoi(m[6])
			}
			if m[7] == "PM" && hour != 12 {
				hour += 12
			} else if m[7] == "AM" && hour == 12 {
				hour = 0
			}

			pendingSender = m[8]
			pendingTs = common.ToUTCSeconds(year, month, day, hour, minute, second, opts.Zone())
			content.Add(m[9])
			havePending = true

			if len(batch) >= opts.EffectiveBatchSize() {
				flush()
			}
			emitProgress(false)
			if opts.Canceled() {
				out <- common.ErrorEvent(fmt.Errorf("whatsapp: canceled"))
				return
			}
			continue
		}

		if !havePending {
			continue
		}
		content.Add(line)

		if len(batch) >= opts.EffectiveBatchSize() {
			flush()
		}
		emitProgress(false)
		if opts.Canceled() {
			out <- common.ErrorEvent(fmt.Errorf("whatsapp: canceled"))
			return
		}
	}
	emitPending()

	if err := scanner.Err(); err != nil {
		out <- common.ErrorEvent(fmt.Errorf("whatsapp: %w", err))
		return
	}

	flush()
	emitProgress(true)
	out <- common.DoneEvent(common.Done{MessageCount: messageCount, MemberCount: len(members)})
}
