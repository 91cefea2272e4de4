package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Run one batch materialization pass and print the result",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.close()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		report, err := app.services.Generation.RunBatch(ctx)
		if err != nil {
			return err
		}

		out, err := json.MarshalIndent(map[string]interface{}{
			"success":        true,
			"generatedCount": len(report.Generated),
			"details":        report.Generated,
			"failures":       report.Failures,
		}, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	},
}
