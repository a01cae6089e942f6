// Package importer implements the Import Coordinator (spec.md §4.5): the
// sniff -> parse -> normalize -> bulk-insert pipeline, reporting progress
// and handling cooperative cancellation at batch boundaries.
package importer

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/chatlab/corpus/internal/chaterr"
	"github.com/chatlab/corpus/internal/corpusstore"
	"github.com/chatlab/corpus/internal/format"
	"github.com/chatlab/corpus/internal/logx"
	"github.com/chatlab/corpus/internal/normalize"
	"github.com/chatlab/corpus/internal/parser"
	"github.com/chatlab/corpus/internal/parser/common"
)

// Phase names reported on Progress, per spec.md §4.5.
const (
	PhaseSniffing = "sniffing"
	PhaseParsing  = "parsing"
	PhaseWriting  = "writing"
	PhaseDone     = "done"
)

// progressInterval bounds how often a Progress event is emitted absent a
// round message-count trigger (spec.md: "at least every 1000 messages or
// every 250 ms, whichever comes first").
const progressInterval = 250 * time.Millisecond
const progressMessageStep = 1000

// Options parameterizes one import run.
type Options struct {
	Path        string
	CorpusID    string // generated if empty
	BatchSize   int
	DefaultZone *time.Location
	Cancel      <-chan struct{}
}

// Progress mirrors spec.md §4.5's event shape.
type Progress struct {
	Phase             string
	BytesProcessed    int64
	TotalBytes        int64
	MessagesProcessed int
	Note              string
}

// Result summarizes a finished (or canceled) import.
type Result struct {
	CorpusID     string
	MessageCount int
	MemberCount  int
	Warnings     []string
	Partial      bool
}

// Coordinator runs imports against one Corpus Store.
type Coordinator struct {
	store *corpusstore.Store
}

// New builds a Coordinator bound to store.
func New(store *corpusstore.Store) *Coordinator {
	return &Coordinator{store: store}
}

// Run executes one import synchronously, streaming Progress events on
// progress until the pipeline finishes, is canceled, or fails structurally.
// Callers running this from the worker pool should invoke it on its own
// goroutine and treat ctx cancellation (or opts.Cancel) as advisory: the
// pipeline only stops at a batch boundary.
func (c *Coordinator) Run(ctx context.Context, opts Options, progress chan<- Progress) (Result, error) {
	corpusID := opts.CorpusID
	if corpusID == "" {
		corpusID = uuid.NewString()
	}
	emit := func(p Progress) {
		select {
		case progress <- p:
		case <-ctx.Done():
		}
	}

	emit(Progress{Phase: PhaseSniffing})

	var totalBytes int64
	if info, err := os.Stat(opts.Path); err == nil {
		totalBytes = info.Size()
	}

	desc, err := format.Sniff(opts.Path)
	if err != nil {
		return Result{CorpusID: corpusID}, err
	}
	pr, err := parser.ForFormat(desc.ID)
	if err != nil {
		return Result{CorpusID: corpusID}, chaterr.New(chaterr.KindUnknownFormat, "importer.Run", err)
	}

	canceled := func() bool {
		if opts.Cancel != nil {
			select {
			case <-opts.Cancel:
				return true
			default:
			}
		}
		select {
		case <-ctx.Done():
			return true
		default:
			return false
		}
	}

	events := make(chan common.Event, 4)
	go pr.Parse(opts.Path, common.Options{
		BatchSize:   opts.BatchSize,
		Cancel:      opts.Cancel,
		DefaultZone: opts.DefaultZone,
	}, events)

	var (
		normalizer   *normalize.Normalizer
		corpusCreated bool
		messageCount int
		lastProgress = time.Now()
		minTs, maxTs int64
		result       Result
	)

	markPartialAndReturn := func(err error) (Result, error) {
		if corpusCreated {
			if merr := c.store.MarkPartial(ctx, corpusID, true); merr != nil {
				logx.Log.Errorf("importer: mark partial failed: %v", merr)
			}
		}
		result.CorpusID = corpusID
		result.Partial = true
		return result, err
	}

	for ev := range events {
		switch ev.Kind {
		case common.EventMeta:
			if err := c.store.CreateCorpus(ctx, corpusstore.Corpus{
				ID: corpusID, Name: ev.Meta.Name, Platform: ev.Meta.Platform, ChatType: ev.Meta.ChatType,
			}); err != nil {
				return Result{CorpusID: corpusID}, err
			}
			corpusCreated = true
			normalizer, err = normalize.New(ctx, nil, c.store, corpusID)
			if err != nil {
				return markPartialAndReturn(err)
			}

		case common.EventMembers:
			tx, err := c.store.BeginImportTx(ctx)
			if err != nil {
				return markPartialAndReturn(err)
			}
			if err := normalizer.RegisterRoster(ctx, tx, c.store, ev.Members); err != nil {
				tx.Rollback()
				return markPartialAndReturn(err)
			}
			if err := tx.Commit(); err != nil {
				return markPartialAndReturn(err)
			}

		case common.EventMessages:
			if canceled() {
				return markPartialAndReturn(chaterr.New(chaterr.KindCanceled, "importer.Run", fmt.Errorf("import canceled")))
			}
			tx, err := c.store.BeginImportTx(ctx)
			if err != nil {
				return markPartialAndReturn(err)
			}
			inserted, err := normalizer.ProcessBatch(ctx, tx, c.store, ev.Messages)
			if err != nil {
				tx.Rollback()
				return markPartialAndReturn(err)
			}
			if err := tx.Commit(); err != nil {
				return markPartialAndReturn(err)
			}
			messageCount += inserted
			for _, m := range ev.Messages {
				if minTs == 0 || m.Ts < minTs {
					minTs = m.Ts
				}
				if m.Ts > maxTs {
					maxTs = m.Ts
				}
			}
			if messageCount%progressMessageStep == 0 || time.Since(lastProgress) >= progressInterval {
				emit(Progress{Phase: PhaseWriting, TotalBytes: totalBytes, MessagesProcessed: messageCount})
				lastProgress = time.Now()
			}

		case common.EventProgress:
			if time.Since(lastProgress) >= progressInterval {
				emit(Progress{
					Phase: PhaseParsing, TotalBytes: totalBytes,
					MessagesProcessed: ev.Progress.MessagesProcessed, Note: ev.Progress.Note,
				})
				lastProgress = time.Now()
			}

		case common.EventDone:
			if normalizer != nil {
				tx, err := c.store.BeginImportTx(ctx)
				if err != nil {
					return markPartialAndReturn(err)
				}
				if err := normalizer.Finalize(ctx, tx, c.store); err != nil {
					tx.Rollback()
					return markPartialAndReturn(err)
				}
				if err := tx.Commit(); err != nil {
					return markPartialAndReturn(err)
				}
				result.Warnings = normalizer.Warnings
			}
			if corpusCreated {
				if err := c.store.UpdateBounds(ctx, corpusID, minTs, maxTs); err != nil {
					logx.Log.Errorf("importer: update bounds failed: %v", err)
				}
			}

		case common.EventError:
			return markPartialAndReturn(chaterr.New(chaterr.KindParseStructural, "importer.Run", ev.Err))
		}
	}

	emit(Progress{Phase: PhaseDone, TotalBytes: totalBytes, MessagesProcessed: messageCount})

	result.CorpusID = corpusID
	result.MessageCount = messageCount
	if corpusCreated {
		members, err := c.store.ListMembers(ctx, corpusID)
		if err == nil {
			result.MemberCount = len(members)
		}
	}
	return result, nil
}
