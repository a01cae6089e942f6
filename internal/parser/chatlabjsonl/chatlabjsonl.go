// Package chatlabjsonl parses the module's own newline-delimited JSON
// export variant: one meta line, one members-array line, then one message
// object per line.
package chatlabjsonl

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"time"

	"github.com/chatlab/corpus/internal/corpusstore"
	"github.com/chatlab/corpus/internal/format"
	"github.com/chatlab/corpus/internal/parser/common"
)

const FormatID = "chatlab_jsonl"

func init() {
	format.Register(format.Descriptor{
		ID:          FormatID,
		DisplayName: "ChatLab JSONL export",
		Platform:    "chatlab",
		Priority:    5,
		Extensions:  []string{"jsonl"},
		Signatures: []*regexp.Regexp{
			regexp.MustCompile(`"chatType"\s*:\s*"(group|private)"`),
		},
	})
}

type metaLine struct {
	Name     string `json:"name"`
	Platform string `json:"platform"`
	ChatType string `json:"chatType"`
}

type memberLine struct {
	PlatformID    string `json:"platformId"`
	AccountName   string `json:"accountName"`
	GroupNickname string `json:"groupNickname"`
}

type messageLine struct {
	PlatformMessageID *string `json:"platformMessageId"`
	Sender            string  `json:"sender"`
	Ts                int64   `json:"ts"`
	Type              string  `json:"type"`
	Content           *string `json:"content"`
	ReplyTo           *string `json:"replyTo"`
	Extra             *struct {
		MediaPath string  `json:"mediaPath,omitempty"`
		LinkURL   string  `json:"linkUrl,omitempty"`
		Lat       float64 `json:"lat,omitempty"`
		Lng       float64 `json:"lng,omitempty"`
	} `json:"extra,omitempty"`
}

type Parser struct{}

func New() *Parser { return &Parser{} }

func (p *Parser) FormatID() string { return FormatID }

func (p *Parser) Parse(path string, opts common.Options, out chan<- common.Event) {
	defer close(out)

	f, err := os.Open(path)
	if err != nil {
		out <- common.ErrorEvent(fmt.Errorf("chatlabjsonl: %w", err))
		return
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 8*1024*1024)

	if !scanner.Scan() {
		out <- common.ErrorEvent(fmt.Errorf("chatlabjsonl: empty file"))
		return
	}
	var meta metaLine
	if err := json.Unmarshal(scanner.Bytes(), &meta); err != nil {
		out <- common.ErrorEvent(fmt.Errorf("chatlabjsonl: meta line: %w", err))
		return
	}
	out <- common.MetaEvent(common.Meta{Name: meta.Name, Platform: meta.Platform, ChatType: corpusstore.ChatType(meta.ChatType)})

	var memberCount int
	if scanner.Scan() {
		var mls []memberLine
		if err := json.Unmarshal(scanner.Bytes(), &mls); err != nil {
			out <- common.ErrorEvent(fmt.Errorf("chatlabjsonl: members line: %w", err))
			return
		}
		members := make([]common.ParsedMember, 0, len(mls))
		for _, ml := range mls {
			members = append(members, common.ParsedMember{
				PlatformID: ml.PlatformID, AccountName: ml.AccountName, GroupNickname: ml.GroupNickname,
			})
		}
		memberCount = len(members)
		out <- common.MembersEvent(members)
	}

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

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var ml messageLine
		if err := json.Unmarshal(line, &ml); err != nil {
			// One malformed record does not abort the import (spec.md §7 ParseRecord).
			continue
		}
		msg := common.ParsedMessage{
			PlatformMessageID: ml.PlatformMessageID,
			SenderPlatformID:  ml.Sender,
			SenderDisplayName: ml.Sender,
			Ts:                ml.Ts,
			Type:              corpusstore.MessageKind(ml.Type),
			Content:           ml.Content,
			ReplyToPlatformID: ml.ReplyTo,
		}
		if ml.Extra != nil {
			msg.Extra = &corpusstore.Extra{
				MediaPath: ml.Extra.MediaPath, LinkURL: ml.Extra.LinkURL, Lat: ml.Extra.Lat, Lng: ml.Extra.Lng,
			}
		}
		batch = append(batch, msg)
		messageCount++
		if len(batch) >= opts.EffectiveBatchSize() {
			flush()
		}
		emitProgress(false)
		if opts.Canceled() {
			out <- common.ErrorEvent(fmt.Errorf("chatlabjsonl: canceled"))
			return
		}
	}
	if err := scanner.Err(); err != nil {
		out <- common.ErrorEvent(fmt.Errorf("chatlabjsonl: %w", err))
		return
	}

	flush()
	emitProgress(true)
	out <- common.DoneEvent(common.Done{MessageCount: messageCount, MemberCount: memberCount})
}
