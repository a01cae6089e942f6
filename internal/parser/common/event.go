// Package common holds the event sum type and parsing helpers shared by
// every format-specific parser under internal/parser (spec.md §4.2, §9).
package common

import "github.com/chatlab/corpus/internal/corpusstore"

// EventKind tags an Event's payload.
type EventKind int

const (
	EventMeta EventKind = iota
	EventMembers
	EventMessages
	EventProgress
	EventDone
	EventError
)

// Meta is the parser's one-time declaration of what it found.
type Meta struct {
	Name     string
	Platform string
	ChatType corpusstore.ChatType
}

// ParsedMember is one roster entry, keyed by the source's raw identifier.
type ParsedMember struct {
	PlatformID    string
	AccountName   string
	GroupNickname string
}

// ParsedMessage is one record in parse order, still carrying raw platform
// identifiers; the normalizer (C3) resolves these to internal ids.
type ParsedMessage struct {
	PlatformMessageID *string
	SenderPlatformID  string
	// SenderDisplayName is the name the sender appeared under at the time
	// of this message, when the format can distinguish a stable id from a
	// mutable display name (WeChat, Discord). Formats where the two
	// coincide (LINE, QQ, WhatsApp) set it equal to SenderPlatformID.
	SenderDisplayName string
	Ts                int64
	Type              corpusstore.MessageKind
	Content           *string
	ReplyToPlatformID *string
	Extra             *corpusstore.Extra
}

// Progress reports parse advancement, at least every 1000 messages or
// 250ms (spec.md §4.5).
type Progress struct {
	Phase             string
	BytesProcessed    int64
	TotalBytes        int64
	MessagesProcessed int
	Note              string
}

// Done is the terminal success event.
type Done struct {
	MessageCount int
	MemberCount  int
}

// Event is the uniform tagged variant every parser emits, in the order
// meta, members, messages*, progress* (interleaved), done|error.
type Event struct {
	Kind     EventKind
	Meta     *Meta
	Members  []ParsedMember
	Messages []ParsedMessage
	Progress *Progress
	Done     *Done
	Err      error
}

func MetaEvent(m Meta) Event              { return Event{Kind: EventMeta, Meta: &m} }
func MembersEvent(m []ParsedMember) Event { return Event{Kind: EventMembers, Members: m} }
func MessagesEvent(m []ParsedMessage) Event {
	return Event{Kind: EventMessages, Messages: m}
}
func ProgressEvent(p Progress) Event { return Event{Kind: EventProgress, Progress: &p} }
func DoneEvent(d Done) Event         { return Event{Kind: EventDone, Done: &d} }
func ErrorEvent(err error) Event     { return Event{Kind: EventError, Err: err} }
