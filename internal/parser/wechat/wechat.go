// Package wechat parses WeChat database-export JSON dumps: one document
// per conversation with a nested messages array and an integer type code.
package wechat

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"time"

	"github.com/chatlab/corpus/internal/corpusstore"
	"github.com/chatlab/corpus/internal/format"
	"github.com/chatlab/corpus/internal/parser/common"
)

const FormatID = "wechat_db_json"

func init() {
	format.Register(format.Descriptor{
		ID:          FormatID,
		DisplayName: "WeChat database export (JSON)",
		Platform:    "wechat",
		Priority:    10,
		Extensions:  []string{"json"},
		Signatures: []*regexp.Regexp{
			regexp.MustCompile(`"isChatRoom"\s*:\s*(true|false)`),
		},
	})
}

// wechatTypeCodes maps the integer message-type codes used by common
// WeChat database export tools to the uniform kind enum.
var wechatTypeCodes = map[int]corpusstore.MessageKind{
	1:     corpusstore.KindText,
	3:     corpusstore.KindImage,
	34:    corpusstore.KindVoice,
	43:    corpusstore.KindVideo,
	47:    corpusstore.KindSticker,
	48:    corpusstore.KindLocation,
	49:    corpusstore.KindFile,
	10000: corpusstore.KindSystem,
}

type document struct {
	Talker     string          `json:"talker"`
	Nickname   string          `json:"nickname"`
	IsChatRoom bool            `json:"isChatRoom"`
	Messages   []wireMessage   `json:"messages"`
}

type wireMessage struct {
	MsgID      string `json:"msgId"`
	SenderID   string `json:"senderId"`
	SenderName string `json:"senderName"`
	CreateTime int64  `json:"createTime"`
	Type       int    `json:"type"`
	Content    string `json:"content"`
}

type Parser struct{}

func New() *Parser { return &Parser{} }

func (p *Parser) FormatID() string { return FormatID }

func (p *Parser) Parse(path string, opts common.Options, out chan<- common.Event) {
	defer close(out)

	f, err := os.Open(path)
	if err != nil {
		out <- common.ErrorEvent(fmt.Errorf("wechat: %w", err))
		return
	}
	defer f.Close()

	var doc document
	if err := json.NewDecoder(f).Decode(&doc); err != nil {
		out <- common.ErrorEvent(fmt.Errorf("wechat: %w", err))
		return
	}

	chatType := corpusstore.ChatTypePrivate
	if doc.IsChatRoom {
		chatType = corpusstore.ChatTypeGroup
	}
	name := doc.Nickname
	if name == "" {
		name = doc.Talker
	}
	out <- common.MetaEvent(common.Meta{Name: name, Platform: "wechat", ChatType: chatType})

	members := map[string]common.ParsedMember{}
	var memberOrder []string
	for _, wm := range doc.Messages {
		if _, ok := members[wm.SenderID]; !ok {
			members[wm.SenderID] = common.ParsedMember{PlatformID: wm.SenderID, AccountName: wm.SenderName}
			memberOrder = append(memberOrder, wm.SenderID)
		}
	}
	roster := make([]common.ParsedMember, 0, len(memberOrder))
	for _, id := range memberOrder {
		roster = append(roster, members[id])
	}
	out <- common.MembersEvent(roster)

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

	for _, wm := range doc.Messages {
		kind, ok := wechatTypeCodes[wm.Type]
		if !ok {
			kind = corpusstore.KindOther
		}
		msg := common.ParsedMessage{
			SenderPlatformID:  wm.SenderID,
			SenderDisplayName: wm.SenderName,
			Ts:                wm.CreateTime,
			Type:              kind,
		}
		if wm.MsgID != "" {
			id := wm.MsgID
			msg.PlatformMessageID = &id
		}
		if kind == corpusstore.KindText || kind == corpusstore.KindSystem {
			c := wm.Content
			msg.Content = &c
		}
		batch = append(batch, msg)
		messageCount++
		if len(batch) >= opts.EffectiveBatchSize() {
			flush()
		}
		emitProgress(false)
		if opts.Canceled() {
			out <- common.ErrorEvent(fmt.Errorf("wechat: canceled"))
			return
		}
	}

	flush()
	emitProgress(true)
	out <- common.DoneEvent(common.Done{MessageCount: messageCount, MemberCount: len(memberOrder)})
}
