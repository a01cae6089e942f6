package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Inspect corpus store schema migrations",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "List pending migrations",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runMigrateStatus()
		},
	})
	return cmd
}

func runMigrateStatus() error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.close()

	pending, err := rt.api.MigrationsPending()
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		fmt.Println("schema is up to date")
		return nil
	}
	for _, m := range pending {
		fmt.Printf("v%d: %s\n", m.Version, m.Description)
		if m.UserMessage != "" {
			fmt.Printf("    %s\n", m.UserMessage)
		}
	}
	return nil
}
