package corpusstore

// ChatType distinguishes a private (1:1) conversation from a group one.
type ChatType string

const (
	ChatTypePrivate ChatType = "private"
	ChatTypeGroup   ChatType = "group"
)

// MessageKind is the uniform message-type enum produced by every parser.
type MessageKind string

const (
	KindText    MessageKind = "text"
	KindImage   MessageKind = "image"
	KindVoice   MessageKind = "voice"
	KindVideo   MessageKind = "video"
	KindFile    MessageKind = "file"
	KindSticker MessageKind = "emoji_sticker"
	KindLocation MessageKind = "location"
	KindLink    MessageKind = "link"
	KindSystem  MessageKind = "system"
	KindOther   MessageKind = "other"
)

// Corpus is a single imported conversation.
type Corpus struct {
	ID              string
	Name            string
	Platform        string
	ChatType        ChatType
	MinTs           int64
	MaxTs           int64
	OwnerPlatformID string
	SchemaVersion   int
	Partial         bool
}

// Member is a participant within one corpus.
type Member struct {
	CorpusID      string
	ID            int64
	PlatformID    string
	AccountName   string
	GroupNickname string
	Aliases       []string
	Roles         []string
	AvatarRef     string
}

// DisplayName returns the first available of group nickname, account name,
// platform id, per spec.md §3.
func (m Member) DisplayName() string {
	if m.GroupNickname != "" {
		return m.GroupNickname
	}
	if m.AccountName != "" {
		return m.AccountName
	}
	return m.PlatformID
}

// NameHistory is one interval of a member's display name.
type NameHistory struct {
	CorpusID string
	MemberID int64
	Name     string
	StartTs  int64
	EndTs    *int64 // nil marks the currently-used name
}

// Extra is the opaque auxiliary payload carried on a Message.
type Extra struct {
	MediaPath string  `json:"mediaPath,omitempty"`
	LinkURL   string  `json:"linkUrl,omitempty"`
	Lat       float64 `json:"lat,omitempty"`
	Lng       float64 `json:"lng,omitempty"`
}

// Message is one chat record.
type Message struct {
	CorpusID          string
	ID                int64
	SenderID          int64
	Ts                int64
	Type              MessageKind
	Content           *string
	ReplyToMessageID  *int64
	PlatformMessageID *string
	// DanglingReplyPlatformID holds a reply's original platform message id
	// when the normalizer never resolved it to an internal id, so it stays
	// visible instead of silently dropping the relation.
	DanglingReplyPlatformID *string
	Extra                   *Extra
}

// Session is a derived conversation-boundary partition of messages.
type Session struct {
	ID             int64
	StartTs        int64
	EndTs          int64
	FirstMessageID int64
	MessageCount   int
}

// MigrationInfo describes one pending (or applied) migration for the boundary.
type MigrationInfo struct {
	Version     int
	Description string
	UserMessage string
}

// TableColumn describes one column of a table for schema.get.
type TableColumn struct {
	Name string
	Type string
	PK   bool
}

// TableSchema describes one table for schema.get.
type TableSchema struct {
	Name    string
	Columns []TableColumn
}
