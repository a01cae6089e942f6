// Package chatlabjson parses the module's own single-document JSON export
// format, used for the round-trip testable property (spec.md §8 property 1).
package chatlabjson

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"regexp"
	"time"

	"github.com/chatlab/corpus/internal/corpusstore"
	"github.com/chatlab/corpus/internal/format"
	"github.com/chatlab/corpus/internal/parser/common"
)

const FormatID = "chatlab_json"

func init() {
	format.Register(format.Descriptor{
		ID:          FormatID,
		DisplayName: "ChatLab JSON export",
		Platform:    "chatlab",
		Priority:    5,
		Extensions:  []string{"json"},
		Signatures: []*regexp.Regexp{
			regexp.MustCompile(`"chatType"\s*:\s*"(group|private)"`),
		},
	})
}

type wireMember struct {
	PlatformID    string `json:"platformId"`
	AccountName   string `json:"accountName"`
	GroupNickname string `json:"groupNickname"`
}

type wireExtra struct {
	MediaPath string  `json:"mediaPath,omitempty"`
	LinkURL   string  `json:"linkUrl,omitempty"`
	Lat       float64 `json:"lat,omitempty"`
	Lng       float64 `json:"lng,omitempty"`
}

type wireMessage struct {
	PlatformMessageID *string    `json:"platformMessageId"`
	Sender            string     `json:"sender"`
	Ts                int64      `json:"ts"`
	Type              string     `json:"type"`
	Content           *string    `json:"content"`
	ReplyTo           *string    `json:"replyTo"`
	Extra             *wireExtra `json:"extra,omitempty"`
}

type Parser struct{}

func New() *Parser { return &Parser{} }

func (p *Parser) FormatID() string { return FormatID }

func (p *Parser) Parse(path string, opts common.Options, out chan<- common.Event) {
	defer close(out)

	f, err := os.Open(path)
	if err != nil {
		out <- common.ErrorEvent(fmt.Errorf("chatlabjson: %w", err))
		return
	}
	defer f.Close()

	dec := json.NewDecoder(f)

	if err := expectDelim(dec, '{'); err != nil {
		out <- common.ErrorEvent(fmt.Errorf("chatlabjson: %w", err))
		return
	}

	var name, platform, chatType string
	var members []common.ParsedMember
	messageCount := 0
	batch := make([]common.ParsedMessage, 0, opts.EffectiveBatchSize())
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

	metaEmitted := false

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			out <- common.ErrorEvent(fmt.Errorf("chatlabjson: %w", err))
			return
		}
		key, ok := keyTok.(string)
		if !ok {
			out <- common.ErrorEvent(fmt.Errorf("chatlabjson: expected object key, got %v", keyTok))
			return
		}

		switch key {
		case "name":
			if err := dec.Decode(&name); err != nil {
				out <- common.ErrorEvent(fmt.Errorf("chatlabjson: %w", err))
				return
			}
		case "platform":
			if err := dec.Decode(&platform); err != nil {
				out <- common.ErrorEvent(fmt.Errorf("chatlabjson: %w", err))
				return
			}
		case "chatType":
			if err := dec.Decode(&chatType); err != nil {
				out <- common.ErrorEvent(fmt.Errorf("chatlabjson: %w", err))
				return
			}
		case "members":
			var wms []wireMember
			if err := dec.Decode(&wms); err != nil {
				out <- common.ErrorEvent(fmt.Errorf("chatlabjson: %w", err))
				return
			}
			for _, wm := range wms {
				members = append(members, common.ParsedMember{
					PlatformID: wm.PlatformID, AccountName: wm.AccountName, GroupNickname: wm.GroupNickname,
				})
			}
		case "messages":
			if !metaEmitted {
				out <- common.MetaEvent(common.Meta{Name: name, Platform: platform, ChatType: corpusstore.ChatType(chatType)})
				out <- common.MembersEvent(members)
				metaEmitted = true
			}
			if err := expectDelim(dec, '['); err != nil {
				out <- common.ErrorEvent(fmt.Errorf("chatlabjson: %w", err))
				return
			}
			for dec.More() {
				var wmsg wireMessage
				if err := dec.Decode(&wmsg); err != nil {
					out <- common.ErrorEvent(fmt.Errorf("chatlabjson: %w", err))
					return
				}
				batch = append(batch, toParsedMessage(wmsg))
				messageCount++
				if len(batch) >= opts.EffectiveBatchSize() {
					flush()
				}
				emitProgress(false)
				if opts.Canceled() {
					out <- common.ErrorEvent(fmt.Errorf("chatlabjson: canceled"))
					return
				}
			}
			if _, err := dec.Token(); err != nil { // consume ']'
				out <- common.ErrorEvent(fmt.Errorf("chatlabjson: %w", err))
				return
			}
		default:
			var discard any
			if err := dec.Decode(&discard); err != nil {
				out <- common.ErrorEvent(fmt.Errorf("chatlabjson: %w", err))
				return
			}
		}
	}

	if !metaEmitted {
		out <- common.MetaEvent(common.Meta{Name: name, Platform: platform, ChatType: corpusstore.ChatType(chatType)})
		out <- common.MembersEvent(members)
	}

	flush()
	emitProgress(true)
	out <- common.DoneEvent(common.Done{MessageCount: messageCount, MemberCount: len(members)})
}

func toParsedMessage(w wireMessage) common.ParsedMessage {
	msg := common.ParsedMessage{
		PlatformMessageID: w.PlatformMessageID,
		SenderPlatformID:  w.Sender,
		SenderDisplayName: w.Sender,
		Ts:                w.Ts,
		Type:              corpusstore.MessageKind(w.Type),
		Content:           w.Content,
		ReplyToPlatformID: w.ReplyTo,
	}
	if w.Extra != nil {
		msg.Extra = &corpusstore.Extra{
			MediaPath: w.Extra.MediaPath, LinkURL: w.Extra.LinkURL, Lat: w.Extra.Lat, Lng: w.Extra.Lng,
		}
	}
	return msg
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		if err == io.EOF {
			return fmt.Errorf("unexpected end of JSON input")
		}
		return err
	}
	d, ok := tok.(json.Delim)
	if !ok || d != want {
		return fmt.Errorf("expected %q, got %v", want, tok)
	}
	return nil
}
