package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-chat/internal/core/domain"
)

var redactCmd = &cobra.Command{
	Use:   "redact [event-id]",
	Short: "Redact an event",
	Long: `Strips the content of an event and removes it from the search index.

The event stays in the timeline as a tombstone, so it still shows up as
redacted in the context of neighbouring results.`,
	Args: cobra.ExactArgs(1),
	RunE: runRedact,
}

func init() {
	rootCmd.AddCommand(redactCmd)
}

func runRedact(cmd *cobra.Command, args []string) error {
	if timelineService == nil {
		return errors.New("timeline service not configured")
	}

	if err := timelineService.Redact(cmd.Context(), args[0]); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("event %s not found", args[0])
		}
		return fmt.Errorf("redaction failed: %w", err)
	}

	cmd.Printf("Redacted %s\n", args[0])
	return nil
}
