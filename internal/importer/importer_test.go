package importer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chatlab/corpus/internal/corpusstore"
)

const fixtureJSONL = `{"name":"Friends","platform":"chatlab","chatType":"group"}
[{"platformId":"alice","accountName":"Alice"},{"platformId":"bob","accountName":"Bob"}]
{"sender":"alice","ts":100,"type":"text","content":"hello"}
{"sender":"bob","ts":110,"type":"text","content":"hi back"}
{"sender":"alice","ts":120,"type":"text","content":"how are you"}
`

func TestRunImportsChatlabJSONL(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "export.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(fixtureJSONL), 0o644))

	store, err := corpusstore.Open(":memory:")
	require.NoError(t, err)
	defer store.Close()

	coord := New(store)
	progress := make(chan Progress, 64)
	done := make(chan struct{})
	go func() {
		for range progress {
		}
		close(done)
	}()

	result, err := coord.Run(context.Background(), Options{Path: path}, progress)
	close(progress)
	<-done
	require.NoError(t, err)

	require.Equal(t, 3, result.MessageCount)
	require.Equal(t, 2, result.MemberCount)
	require.False(t, result.Partial)

	corpus, err := store.GetCorpus(context.Background(), result.CorpusID)
	require.NoError(t, err)
	require.Equal(t, "Friends", corpus.Name)
	require.Equal(t, corpusstore.ChatTypeGroup, corpus.ChatType)
	require.Equal(t, int64(100), corpus.MinTs)
	require.Equal(t, int64(120), corpus.MaxTs)
}

func TestRunRejectsUnknownFormat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "export.unknown")
	require.NoError(t, os.WriteFile(path, []byte("not a recognized chat export"), 0o644))

	store, err := corpusstore.Open(":memory:")
	require.NoError(t, err)
	defer store.Close()

	coord := New(store)
	progress := make(chan Progress, 8)
	done := make(chan struct{})
	go func() {
		for range progress {
		}
		close(done)
	}()

	_, err = coord.Run(context.Background(), Options{Path: path}, progress)
	close(progress)
	<-done
	require.Error(t, err)
}
