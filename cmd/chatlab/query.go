package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func queryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query <sql>",
		Short: "Run a read-only SQL query against the corpus store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(args[0])
		},
	}
	return cmd
}

func runQuery(sql string) error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.close()

	result, err := rt.api.QuerySQL(context.Background(), sql)
	if err != nil {
		return err
	}

	fmt.Println(strings.Join(result.Columns, "\t"))
	for _, row := range result.Rows {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = fmt.Sprintf("%v", v)
		}
		fmt.Println(strings.Join(cells, "\t"))
	}
	fmt.Printf("(%d rows, %s", result.RowCount, result.Duration)
	if result.Limited {
		fmt.Print(", truncated")
	}
	fmt.Println(")")
	return nil
}
