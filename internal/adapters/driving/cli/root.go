// Package cli provides the sercha-chat command line interface.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-chat/internal/adapters/driving/mcp"
	"github.com/custodia-labs/sercha-chat/internal/core/domain"
	"github.com/custodia-labs/sercha-chat/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-chat/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// skipBootstrap marks commands that run without services.
const skipBootstrap = "skip-bootstrap"

// SettingsApplier receives search settings reloaded at runtime.
type SettingsApplier interface {
	ApplySettings(settings domain.SearchSettings)
}

// ConfigWatcher calls onChange whenever the configuration changes,
// until ctx is cancelled.
type ConfigWatcher func(ctx context.Context, onChange func()) error

// Services holds everything the commands talk to.
type Services struct {
	Search   driving.SearchService
	Timeline driving.TimelineService
	Import   driving.ImportService
	Settings driving.SettingsService

	// Rooms and Events back the MCP resources. Optional.
	Rooms  mcp.RoomLister
	Events mcp.EventReader

	// Applier and Watcher enable settings hot reload in serve. Optional.
	Applier SettingsApplier
	Watcher ConfigWatcher
}

// Bootstrap builds the services once flags are parsed.
type Bootstrap func(ctx context.Context) (*Services, error)

var (
	searchService   driving.SearchService
	timelineService driving.TimelineService
	importService   driving.ImportService
	settingsService driving.SettingsService
	roomLister      mcp.RoomLister
	eventReader     mcp.EventReader
	settingsApplier SettingsApplier
	configWatcher   ConfigWatcher

	bootstrap Bootstrap
	verbose   bool
)

var rootCmd = &cobra.Command{
	Use:   "sercha-chat",
	Short: "Search chat room timelines",
	Long: `sercha-chat indexes chat room timelines and searches them.

Messages are matched on every query word, the last word also matching as a
prefix. Results can carry surrounding messages and the sender profile, and
are paged with an opaque next-batch token.`,
	SilenceUsage:      true,
	PersistentPreRunE: preRun,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// SetServices wires the services used by the commands.
func SetServices(s *Services) {
	searchService = s.Search
	timelineService = s.Timeline
	importService = s.Import
	settingsService = s.Settings
	roomLister = s.Rooms
	eventReader = s.Events
	settingsApplier = s.Applier
	configWatcher = s.Watcher
}

// SetBootstrap registers a builder run before any command that needs
// services. Services set with SetServices take precedence.
func SetBootstrap(b Bootstrap) {
	bootstrap = b
}

// SetVersion sets the reported version.
func SetVersion(v string) {
	version = v
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func preRun(cmd *cobra.Command, _ []string) error {
	if verbose {
		logger.SetVerbose(true)
	}
	if cmd.Annotations[skipBootstrap] != "" || bootstrap == nil || searchService != nil {
		return nil
	}

	s, err := bootstrap(cmd.Context())
	if err != nil {
		return err
	}
	SetServices(s)
	return nil
}
