package line

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/chatlab/corpus/internal/corpusstore"
	"github.com/chatlab/corpus/internal/parser/common"
)

// Scenario A (LINE English group): spec.md §8.
func TestParseEnglishGroupScenario(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "chat.txt")
	content := "[LINE] Chat history in MyGroup\n" +
		"Saved on: 2025/01/02 10:00\n" +
		"\n" +
		"2025/01/02 Friday\n" +
		"10:15\tAlice\thi\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	out := make(chan common.Event, 16)
	loc := time.UTC
	New().Parse(path, common.Options{DefaultZone: loc}, out)

	var meta *common.Meta
	var messages []common.ParsedMessage
	var done *common.Done
	for ev := range out {
		switch ev.Kind {
		case common.EventMeta:
			meta = ev.Meta
		case common.EventMessages:
			messages = append(messages, ev.Messages...)
		case common.EventDone:
			done = ev.Done
		case common.EventError:
			t.Fatalf("unexpected error event: %v", ev.Err)
		}
	}

	if meta == nil {
		t.Fatal("expected a meta event")
	}
	if meta.Platform != "line" {
		t.Errorf("platform = %q, want line", meta.Platform)
	}
	if meta.ChatType != corpusstore.ChatTypeGroup {
		t.Errorf("chatType = %q, want group", meta.ChatType)
	}

	if len(messages) != 1 {
		t.Fatalf("got %d messages, want 1", len(messages))
	}
	msg := messages[0]
	if msg.SenderPlatformID != "Alice" {
		t.Errorf("sender = %q, want Alice", msg.SenderPlatformID)
	}
	if msg.Content == nil || *msg.Content != "hi" {
		t.Errorf("content = %v, want hi", msg.Content)
	}

	wantTs := time.Date(2025, 1, 2, 10, 15, 0, 0, loc).Unix()
	if msg.Ts != wantTs {
		t.Errorf("ts = %d, want %d", msg.Ts, wantTs)
	}

	if done == nil {
		t.Fatal("expected a done event")
	}
	if done.MessageCount != 1 {
		t.Errorf("messageCount = %d, want 1", done.MessageCount)
	}
	if done.MemberCount != 1 {
		t.Errorf("memberCount = %d, want 1", done.MemberCount)
	}
}
