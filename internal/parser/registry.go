// Package parser aggregates every format-specific parser behind one
// lookup keyed by format.Descriptor.ID, and imports each subpackage so its
// init() registers its descriptor with internal/format.
package parser

import (
	"fmt"

	"github.com/chatlab/corpus/internal/parser/chatlabjson"
	"github.com/chatlab/corpus/internal/parser/chatlabjsonl"
	"github.com/chatlab/corpus/internal/parser/common"
	"github.com/chatlab/corpus/internal/parser/discord"
	"github.com/chatlab/corpus/internal/parser/instagram"
	"github.com/chatlab/corpus/internal/parser/line"
	"github.com/chatlab/corpus/internal/parser/qq"
	"github.com/chatlab/corpus/internal/parser/qqtxt"
	"github.com/chatlab/corpus/internal/parser/wechat"
	"github.com/chatlab/corpus/internal/parser/wechattxt"
	"github.com/chatlab/corpus/internal/parser/whatsapp"
)

// ForFormat returns the parser implementing the named format descriptor.
func ForFormat(formatID string) (common.Parser, error) {
	switch formatID {
	case chatlabjson.FormatID:
		return chatlabjson.New(), nil
	case chatlabjsonl.FormatID:
		return chatlabjsonl.New(), nil
	case line.FormatID:
		return line.New(), nil
	case wechat.FormatID:
		return wechat.New(), nil
	case wechattxt.FormatID:
		return wechattxt.New(), nil
	case qq.FormatID:
		return qq.New(), nil
	case qqtxt.FormatID:
		return qqtxt.New(), nil
	case whatsapp.FormatID:
		return whatsapp.New(), nil
	case instagram.FormatID:
		return instagram.New(), nil
	case discord.FormatID:
		return discord.New(), nil
	default:
		return nil, fmt.Errorf("parser: no parser registered for format %q", formatID)
	}
}
