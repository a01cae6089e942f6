package format

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"
)

func TestSniffChoosesLowestPriorityMatch(t *testing.T) {
	saved := All()
	t.Cleanup(func() {
		mu.Lock()
		descriptors = saved
		mu.Unlock()
	})
	mu.Lock()
	descriptors = nil
	mu.Unlock()

	Register(Descriptor{
		ID: "b-format", Priority: 10, Extensions: []string{"txt"},
		Signatures: []*regexp.Regexp{regexp.MustCompile(`hello`)},
	})
	Register(Descriptor{
		ID: "a-format", Priority: 5, Extensions: []string{"txt"},
		Signatures: []*regexp.Regexp{regexp.MustCompile(`hello`)},
	})

	dir := t.TempDir()
	path := filepath.Join(dir, "sample.txt")
	if err := os.WriteFile(path, []byte("hello world"), 0644); err != nil {
		t.Fatal(err)
	}

	got, err := Sniff(path)
	if err != nil {
		t.Fatalf("Sniff: %v", err)
	}
	if got.ID != "a-format" {
		t.Fatalf("expected lowest-priority descriptor a-format, got %s", got.ID)
	}
}

func TestSniffTiesBrokenLexicographically(t *testing.T) {
	saved := All()
	t.Cleanup(func() {
		mu.Lock()
		descriptors = saved
		mu.Unlock()
	})
	mu.Lock()
	descriptors = nil
	mu.Unlock()

	Register(Descriptor{
		ID: "zeta", Priority: 1, Extensions: []string{"txt"},
		Signatures: []*regexp.Regexp{regexp.MustCompile(`x`)},
	})
	Register(Descriptor{
		ID: "alpha", Priority: 1, Extensions: []string{"txt"},
		Signatures: []*regexp.Regexp{regexp.MustCompile(`x`)},
	})

	dir := t.TempDir()
	path := filepath.Join(dir, "sample.txt")
	if err := os.WriteFile(path, []byte("xyz"), 0644); err != nil {
		t.Fatal(err)
	}

	got, err := Sniff(path)
	if err != nil {
		t.Fatalf("Sniff: %v", err)
	}
	if got.ID != "alpha" {
		t.Fatalf("expected lexicographic tie-break alpha, got %s", got.ID)
	}
}

func TestSniffUnknownFormat(t *testing.T) {
	saved := All()
	t.Cleanup(func() {
		mu.Lock()
		descriptors = saved
		mu.Unlock()
	})
	mu.Lock()
	descriptors = nil
	mu.Unlock()

	dir := t.TempDir()
	path := filepath.Join(dir, "sample.bin")
	if err := os.WriteFile(path, []byte("whatever"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Sniff(path); err == nil {
		t.Fatal("expected UnknownFormat error")
	}
}
