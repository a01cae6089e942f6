// Package format holds parser descriptors and sniffs a raw export file's
// format by extension and content signature (spec.md §4.1).
package format

import (
	"bufio"
	"bytes"
	"io"
	"os"
	"regexp"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/chatlab/corpus/internal/chaterr"
)

// headBytes bounds how much of a file is read and decoded while sniffing.
const headBytes = 64 * 1024

// Descriptor declares one supported export format.
type Descriptor struct {
	ID          string
	DisplayName string
	Platform    string
	Priority    int // lower is preferred
	Extensions  []string
	Signatures  []*regexp.Regexp
}

var (
	mu          sync.RWMutex
	descriptors []Descriptor
)

// Register adds a descriptor to the registry. Called from each parser
// package's init(), following the closed-set-of-formats design (spec.md §9).
func Register(d Descriptor) {
	mu.Lock()
	defer mu.Unlock()
	descriptors = append(descriptors, d)
}

// RegisterSignature adds an extra content signature to an already
// registered descriptor, used by the optional YAML overlay to extend a
// format's detection without a rebuild.
func RegisterSignature(id string, pattern *regexp.Regexp) bool {
	mu.Lock()
	defer mu.Unlock()
	for i := range descriptors {
		if descriptors[i].ID == id {
			descriptors[i].Signatures = append(descriptors[i].Signatures, pattern)
			return true
		}
	}
	return false
}

// All returns a copy of the currently registered descriptors.
func All() []Descriptor {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]Descriptor, len(descriptors))
	copy(out, descriptors)
	return out
}

// Sniff identifies the best-matching descriptor for path per spec.md §4.1:
// filter by extension, read the head once, keep descriptors with a matching
// signature, choose the lowest-priority remaining one, ties broken by
// lexicographic id.
func Sniff(path string) (Descriptor, error) {
	ext := extensionOf(path)

	mu.RLock()
	candidates := make([]Descriptor, 0, len(descriptors))
	for _, d := range descriptors {
		if acceptsExtension(d, ext) {
			candidates = append(candidates, d)
		}
	}
	mu.RUnlock()

	if len(candidates) == 0 {
		return Descriptor{}, chaterr.New(chaterr.KindUnknownFormat, "format.Sniff", errUnknownExtension(ext))
	}

	head, err := readHead(path)
	if err != nil {
		return Descriptor{}, chaterr.New(chaterr.KindIO, "format.Sniff", err)
	}

	var matched []Descriptor
	for _, d := range candidates {
		if matchesAnySignature(d, head) {
			matched = append(matched, d)
		}
	}
	if len(matched) == 0 {
		return Descriptor{}, chaterr.New(chaterr.KindUnknownFormat, "format.Sniff", errNoSignatureMatch())
	}

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].Priority != matched[j].Priority {
			return matched[i].Priority < matched[j].Priority
		}
		return matched[i].ID < matched[j].ID
	})
	return matched[0], nil
}

func acceptsExtension(d Descriptor, ext string) bool {
	for _, e := range d.Extensions {
		if strings.EqualFold(e, ext) {
			return true
		}
	}
	return false
}

func matchesAnySignature(d Descriptor, head string) bool {
	for _, sig := range d.Signatures {
		if sig.MatchString(head) {
			return true
		}
	}
	return false
}

func extensionOf(path string) string {
	idx := strings.LastIndexByte(path, '.')
	if idx < 0 {
		return ""
	}
	return path[idx+1:]
}

// readHead reads up to headBytes from path, strips a UTF-8 BOM, normalizes
// CRLF/CR to LF, and drops any trailing invalid UTF-8 fragment from the read
// boundary, per spec.md §4.1.
func readHead(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	buf := make([]byte, headBytes)
	r := bufio.NewReader(f)
	n, err := io.ReadFull(r, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", err
	}
	buf = buf[:n]
	buf = bytes.TrimPrefix(buf, []byte{0xEF, 0xBB, 0xBF})

	for len(buf) > 0 && !utf8.Valid(buf) {
		buf = buf[:len(buf)-1]
	}

	text := string(buf)
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return text, nil
}
