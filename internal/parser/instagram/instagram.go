// Package instagram parses Instagram's per-thread JSON export. Messages
// are stored newest-first; this parser reverses them into parse order, and
// corrects Instagram's well-known mojibake where non-ASCII text is
// double-UTF-8-encoded (each original UTF-8 byte re-escaped as a Latin-1
// codepoint).
package instagram

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"time"
	"unicode/utf8"

	"github.com/chatlab/corpus/internal/corpusstore"
	"github.com/chatlab/corpus/internal/format"
	"github.com/chatlab/corpus/internal/parser/common"
)

const FormatID = "instagram_json"

func init() {
	format.Register(format.Descriptor{
		ID:          FormatID,
		DisplayName: "Instagram direct message export (JSON)",
		Platform:    "instagram",
		Priority:    10,
		Extensions:  []string{"json"},
		Signatures: []*regexp.Regexp{
			regexp.MustCompile(`"participants"\s*:\s*\[`),
			regexp.MustCompile(`"is_group"\s*:\s*(true|false)`),
		},
	})
}

type participant struct {
	Name string `json:"name"`
}

type wireMessage struct {
	SenderName  string `json:"sender_name"`
	TimestampMs int64  `json:"timestamp_ms"`
	Content     string `json:"content"`
	Type        string `json:"type"`
}

type document struct {
	Participants []participant `json:"participants"`
	Title        string        `json:"title"`
	IsGroup      bool          `json:"is_group"`
	Messages     []wireMessage `json:"messages"`
}

type Parser struct{}

func New() *Parser { return &Parser{} }

func (p *Parser) FormatID() string { return FormatID }

func (p *Parser) Parse(path string, opts common.Options, out chan<- common.Event) {
	defer close(out)

	f, err := os.Open(path)
	if err != nil {
		out <- common.ErrorEvent(fmt.Errorf("instagram: %w", err))
		return
	}
	defer f.Close()

	var doc document
	if err := json.NewDecoder(f).Decode(&doc); err != nil {
		out <- common.ErrorEvent(fmt.Errorf("instagram: %w", err))
		return
	}

	chatType := corpusstore.ChatTypePrivate
	if doc.IsGroup {
		chatType = corpusstore.ChatTypeGroup
	}
	out <- common.MetaEvent(common.Meta{Name: fixMojibake(doc.Title), Platform: "instagram", ChatType: chatType})

	roster := make([]common.ParsedMember, 0, len(doc.Participants))
	for _, pt := range doc.Participants {
		name := fixMojibake(pt.Name)
		roster = append(roster, common.ParsedMember{PlatformID: name, AccountName: name})
	}
	out <- common.MembersEvent(roster)

	batch := make([]common.ParsedMessage, 0, opts.EffectiveBatchSize())
	messageCount := 0
	lastProgress := time.Now()
	members := map[string]bool{}

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

	// Instagram exports messages newest-first; walk in reverse for parse order.
	for i := len(doc.Messages) - 1; i >= 0; i-- {
		wm := doc.Messages[i]
		sender := fixMojibake(wm.SenderName)
		kind := instagramTypeToKind(wm.Type)
		msg := common.ParsedMessage{
			SenderPlatformID:  sender,
			SenderDisplayName: sender,
			Ts:                wm.TimestampMs / 1000,
			Type:              kind,
		}
		if kind == corpusstore.KindText {
			c := fixMojibake(wm.Content)
			msg.Content = &c
		}
		members[sender] = true
		batch = append(batch, msg)
		messageCount++
		if len(batch) >= opts.EffectiveBatchSize() {
			flush()
		}
		emitProgress(false)
		if opts.Canceled() {
			out <- common.ErrorEvent(fmt.Errorf("instagram: canceled"))
			return
		}
	}

	flush()
	emitProgress(true)
	out <- common.DoneEvent(common.Done{MessageCount: messageCount, MemberCount: len(members)})
}

func instagramTypeToKind(t string) corpusstore.MessageKind {
	switch t {
	case "Generic":
		return corpusstore.KindText
	case "Share":
		return corpusstore.KindLink
	case "Media", "Photo":
		return corpusstore.KindImage
	case "Video":
		return corpusstore.KindVideo
	case "Audio", "Voice":
		return corpusstore.KindVoice
	case "Sticker":
		return corpusstore.KindSticker
	default:
		return corpusstore.KindOther
	}
}

// fixMojibake reverses Instagram's double-UTF-8-encoding quirk: if every
// rune in s is within Latin-1 range, reinterpreting those bytes as UTF-8
// recovers the original text; otherwise s is returned unchanged.
func fixMojibake(s string) string {
	raw := make([]byte, 0, len(s))
	for _, r := range s {
		if r > 0xFF {
			return s
		}
		raw = append(raw, byte(r))
	}
	if utf8.Valid(raw) {
		return string(raw)
	}
	return s
}
