// Package discord parses DiscordChatExporter-style JSON exports: one
// document per channel, with an explicit per-message "type" distinguishing
// ordinary content from system-subtype messages (join, pin, boost, etc).
package discord

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

const FormatID = "discord_json"

func init() {
	format.Register(format.Descriptor{
		ID:          FormatID,
		DisplayName: "Discord channel export (JSON)",
		Platform:    "discord",
		Priority:    10,
		Extensions:  []string{"json"},
		Signatures: []*regexp.Regexp{
			regexp.MustCompile(`"guild"\s*:\s*\{`),
			regexp.MustCompile(`"channel"\s*:\s*\{`),
		},
	})
}

type author struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Nickname string `json:"nickname"`
}

type reference struct {
	MessageID string `json:"messageId"`
}

type wireMessage struct {
	ID        string     `json:"id"`
	Type      string     `json:"type"`
	Timestamp string     `json:"timestamp"`
	Author    author     `json:"author"`
	Content   string     `json:"content"`
	Reference *reference `json:"reference"`
}

type channel struct {
	Name string `json:"name"`
}

type document struct {
	Channel  channel       `json:"channel"`
	Messages []wireMessage `json:"messages"`
}

var systemTypes = map[string]bool{
	"GuildMemberJoin":       true,
	"ChannelPinnedMessage":  true,
	"ChannelNameChange":     true,
	"ChannelIconChange":     true,
	"GuildBoost":            true,
	"GuildBoostTier1":       true,
	"GuildBoostTier2":       true,
	"GuildBoostTier3":       true,
	"ThreadCreated":         true,
	"RecipientAdd":          true,
	"RecipientRemove":       true,
}

type Parser struct{}

func New() *Parser { return &Parser{} }

func (p *Parser) FormatID() string { return FormatID }

func (p *Parser) Parse(path string, opts common.Options, out chan<- common.Event) {
	defer close(out)

	f, err := os.Open(path)
	if err != nil {
		out <- common.ErrorEvent(fmt.Errorf("discord: %w", err))
		return
	}
	defer f.Close()

	var doc document
	if err := json.NewDecoder(f).Decode(&doc); err != nil {
		out <- common.ErrorEvent(fmt.Errorf("discord: %w", err))
		return
	}

	out <- common.MetaEvent(common.Meta{Name: doc.Channel.Name, Platform: "discord", ChatType: corpusstore.ChatTypeGroup})

	members := map[string]common.ParsedMember{}
	var memberOrder []string
	for _, wm := range doc.Messages {
		if _, ok := members[wm.Author.ID]; !ok {
			display := wm.Author.Nickname
			if display == "" {
				display = wm.Author.Name
			}
			members[wm.Author.ID] = common.ParsedMember{PlatformID: wm.Author.ID, AccountName: wm.Author.Name, GroupNickname: display}
			memberOrder = append(memberOrder, wm.Author.ID)
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
		ts, err := time.Parse(time.RFC3339, wm.Timestamp)
		if err != nil {
			// Malformed record; counted and skipped, not fatal (spec.md §7 ParseRecord).
			continue
		}

		kind := corpusstore.KindText
		if systemTypes[wm.Type] {
			kind = corpusstore.KindSystem
		}

		display := wm.Author.Nickname
		if display == "" {
			display = wm.Author.Name
		}
		msg := common.ParsedMessage{
			SenderPlatformID:  wm.Author.ID,
			SenderDisplayName: display,
			Ts:                ts.Unix(),
			Type:              kind,
		}
		if wm.ID != "" {
			id := wm.ID
			msg.PlatformMessageID = &id
		}
		if wm.Reference != nil && wm.Reference.MessageID != "" {
			rid := wm.Reference.MessageID
			msg.ReplyToPlatformID = &rid
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
			out <- common.ErrorEvent(fmt.Errorf("discord: canceled"))
			return
		}
	}

	flush()
	emitProgress(true)
	out <- common.DoneEvent(common.Done{MessageCount: messageCount, MemberCount: len(memberOrder)})
}
