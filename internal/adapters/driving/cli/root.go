// Package cli implements the partsync command-line interface with cobra.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alghazaly/partsync/internal/core/ports/driven"
	"github.com/alghazaly/partsync/internal/core/ports/driving"
	"github.com/alghazaly/partsync/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Global flags.
var (
	verbose      bool
	outputFormat string
	logFormat    string
)

// ConnectivityChecker probes the remote once and forwards any change.
type ConnectivityChecker interface {
	Check(ctx context.Context) bool
}

// AgentOptions configures a long-running agent.
type AgentOptions struct {
	// ControlAddr overrides the configured control API address.
	ControlAddr string

	// DisableControl skips the control API.
	DisableControl bool

	// MCPAddr serves MCP over HTTP alongside the agent when set.
	MCPAddr string
}

// AgentFunc runs the agent until ctx is cancelled.
type AgentFunc func(ctx context.Context, opts AgentOptions) error

// Services are the ports the commands drive.
type Services struct {
	Queue         driving.QueueService
	Driver        driving.SyncDriver
	Network       driving.NetworkHandler
	Connectivity  ConnectivityChecker
	Notifications driving.NotificationService
	Actors        driving.ActorService
	Catalog       driving.CatalogService
	History       driving.HistoryService
	Config        driven.ConfigStore
	Agent         AgentFunc
}

// Service instances injected by main.
var (
	queueService        driving.QueueService
	syncDriver          driving.SyncDriver
	networkHandler      driving.NetworkHandler
	connectivity        ConnectivityChecker
	notificationService driving.NotificationService
	actorService        driving.ActorService
	catalogService      driving.CatalogService
	historyService      driving.HistoryService
	configStore         driven.ConfigStore
	agentRunner         AgentFunc
)

// errNotConfigured builds the error returned when a command's service is missing.
func errNotConfigured(name string) error {
	return fmt.Errorf("%s service not configured", name)
}

var rootCmd = &cobra.Command{
	Use:   "partsync",
	Short: "Offline-first sync agent for the parts storefront",
	Long: `partsync keeps a local cache of the storefront catalogue, queues cart,
order and favorite mutations while the network is down, and replays them
in order once connectivity returns.`,
	SilenceUsage: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		logger.SetVerbose(verbose)
		logger.SetFormat(logger.Format(logFormat))
		switch outputFormat {
		case formatText, formatJSON, formatYAML:
			return nil
		default:
			return fmt.Errorf("unknown output format %q", outputFormat)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", formatText, "Output format: text, json or yaml")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", string(logger.FormatText), "Log format: text or json")
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// SetServices injects the services used by the commands.
func SetServices(s Services) {
	queueService = s.Queue
	syncDriver = s.Driver
	networkHandler = s.Network
	connectivity = s.Connectivity
	notificationService = s.Notifications
	actorService = s.Actors
	catalogService = s.Catalog
	historyService = s.History
	configStore = s.Config
	agentRunner = s.Agent
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// commandContext returns the command's context, or a background context in tests.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// errOffline is returned by commands that need the remote.
var errOffline = errors.New("remote unreachable, working offline")
