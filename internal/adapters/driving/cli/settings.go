package cli

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-chat/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and change search, index, profile and decryption settings.

Settings are stored in ~/.sercha-chat/config.toml. A running server picks up
search limit changes without a restart.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Change a setting",
	Long: `Change a single setting.

Available keys:
  search.default_limit  page size when a query sets none
  search.max_limit      largest page size served
  search.max_context    largest before/after context served
  search.concurrency    concurrent context and profile lookups per page
  index.backend         memory or bleve
  index.bloom_capacity  expected distinct words per room (memory index)
  profile.lookup_rate   profile lookups per second, 0 for unlimited
  crypto.room_keys      comma separated roomID=base64key entries`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Search]")
	cmd.Printf("  Default limit: %d\n", settings.Search.DefaultLimit)
	cmd.Printf("  Max limit: %d\n", settings.Search.MaxLimit)
	cmd.Printf("  Max context: %d\n", settings.Search.MaxContext)
	cmd.Printf("  Concurrency: %d\n", settings.Search.Concurrency)
	cmd.Println()

	cmd.Println("[Index]")
	cmd.Printf("  Backend: %s\n", settings.Index.Backend.Description())
	if settings.Index.Backend == domain.IndexBackendMemory {
		cmd.Printf("  Bloom capacity: %d\n", settings.Index.BloomCapacity)
	}
	cmd.Println()

	cmd.Println("[Profile]")
	if settings.Profile.LookupRate > 0 {
		cmd.Printf("  Lookup rate: %g/s\n", settings.Profile.LookupRate)
	} else {
		cmd.Println("  Lookup rate: unlimited")
	}
	cmd.Println()

	cmd.Println("[Crypto]")
	rooms := keyedRooms(settings.Crypto.RoomKeys)
	if len(rooms) == 0 {
		cmd.Println("  Room keys: none")
	} else {
		cmd.Printf("  Room keys: %s\n", strings.Join(rooms, ", "))
	}

	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	if err := applySetting(settings, args[0], args[1]); err != nil {
		return err
	}

	if err := settingsService.Save(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	cmd.Printf("Set %s\n", args[0])
	return nil
}

func applySetting(settings *domain.AppSettings, key, value string) error {
	var err error
	switch key {
	case "search.default_limit":
		settings.Search.DefaultLimit, err = strconv.Atoi(value)
	case "search.max_limit":
		settings.Search.MaxLimit, err = strconv.Atoi(value)
	case "search.max_context":
		settings.Search.MaxContext, err = strconv.Atoi(value)
	case "search.concurrency":
		settings.Search.Concurrency, err = strconv.Atoi(value)
	case "index.backend":
		backend := domain.IndexBackend(value)
		if !backend.IsValid() {
			return fmt.Errorf("unknown index backend %q", value)
		}
		settings.Index.Backend = backend
	case "index.bloom_capacity":
		settings.Index.BloomCapacity, err = strconv.Atoi(value)
	case "profile.lookup_rate":
		settings.Profile.LookupRate, err = strconv.ParseFloat(value, 64)
	case "crypto.room_keys":
		settings.Crypto.RoomKeys = splitList(value)
	default:
		return fmt.Errorf("unknown setting %q", key)
	}
	if err != nil {
		return fmt.Errorf("invalid value for %s: %q", key, value)
	}
	return nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// keyedRooms returns the room IDs of roomID=key entries, never the keys.
func keyedRooms(entries []string) []string {
	rooms := make([]string, 0, len(entries))
	for _, entry := range entries {
		room, _, ok := strings.Cut(entry, "=")
		if !ok {
			room = "(malformed entry)"
		}
		rooms = append(rooms, room)
	}
	sort.Strings(rooms)
	return rooms
}
