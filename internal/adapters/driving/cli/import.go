package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-chat/internal/adapters/driving/matrix"
)

var importCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Import room timelines from a JSON export",
	Long: `Imports rooms, member profiles and events from a JSON export.

The export has the form:

  {"rooms": [{"room_id": "...",
              "members": [{"user_id": "...", "displayname": "...", "avatar_url": "..."}],
              "events":  [<client-server API events>]}]}

Use "-" to read from standard input. Importing the same export twice is
harmless: events are replaced by ID.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	if importService == nil {
		return errors.New("import service not configured")
	}

	var r io.Reader
	if args[0] == "-" {
		r = cmd.InOrStdin()
	} else {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("opening export: %w", err)
		}
		defer f.Close()
		r = f
	}

	export, err := matrix.DecodeExport(r)
	if err != nil {
		return err
	}

	stats, err := importService.Import(cmd.Context(), export.Snapshots())
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	cmd.Printf("Imported %d rooms, %d profiles, %d events\n", stats.Rooms, stats.Profiles, stats.Events)
	cmd.Printf("  searchable: %d\n", stats.Searchable)
	cmd.Printf("  pending decryption: %d\n", stats.Pending)
	cmd.Printf("  redacted: %d\n", stats.Redacted)
	return nil
}
