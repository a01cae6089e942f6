package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/chatlab/corpus/internal/boundary"
)

func importCmd() *cobra.Command {
	var corpusID string
	var batchSize int

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import a chat export file into the corpus store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd.Context(), args[0], corpusID, batchSize)
		},
	}
	cmd.Flags().StringVar(&corpusID, "corpus", "", "corpus id to import into (default: generated)")
	cmd.Flags().IntVar(&batchSize, "batch-size", 0, "messages per write transaction (default: config value)")
	return cmd
}

func runImport(parentCtx context.Context, path, corpusID string, batchSize int) error {
	ctx, cancel := signal.NotifyContext(parentCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.close()

	if batchSize == 0 {
		batchSize = rt.cfg.Store.BatchSize
	}

	jobID, err := rt.api.ImportStart(ctx, path, boundary.ImportOptions{
		CorpusID:    corpusID,
		BatchSize:   batchSize,
		DefaultZone: rt.cfg.ResolveTimezone(),
	})
	if err != nil {
		return fmt.Errorf("start import: %w", err)
	}

	events, ok := rt.api.Events(jobID)
	if !ok {
		return fmt.Errorf("import job %s vanished before it could be observed", jobID)
	}

	for ev := range events {
		switch ev.Kind {
		case boundary.JobEventProgress:
			p := ev.Progress
			fmt.Printf("\r%s: %d messages, %d/%d bytes", p.Phase, p.MessagesProcessed, p.BytesProcessed, p.TotalBytes)
		case boundary.JobEventDone:
			r := ev.Result
			fmt.Printf("\rimported %d messages from %d members into corpus %s\n", r.MessageCount, r.MemberCount, r.CorpusID)
			if r.Partial {
				fmt.Println("warning: import is partial — some records could not be parsed")
			}
			for _, w := range r.Warnings {
				fmt.Printf("warning: %s\n", w)
			}
		case boundary.JobEventError:
			return fmt.Errorf("import failed: %w", ev.Err)
		}
	}
	return nil
}
