package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var agentCmd = &cobra.Command{
	Use:   "agent",
	Short: "Run the sync agent in the foreground",
	Long: `Runs the sync agent until interrupted: periodic full-sync cycles,
connectivity monitoring with queue replay on reconnect, config hot reload,
and the local control API.

Examples:
  # Control API on the configured control.addr
  partsync agent

  # Without the control API, with MCP over HTTP
  partsync agent --no-control --mcp-addr 127.0.0.1:8766`,
	RunE: runAgent,
}

// Flags for agent.
var (
	agentControlAddr string
	agentNoControl   bool
	agentMCPAddr     string
)

func init() {
	agentCmd.Flags().StringVar(&agentControlAddr, "control-addr", "", "Control API listen address (default control.addr)")
	agentCmd.Flags().BoolVar(&agentNoControl, "no-control", false, "Do not serve the control API")
	agentCmd.Flags().StringVar(&agentMCPAddr, "mcp-addr", "", "Also serve MCP over HTTP on this address")
	rootCmd.AddCommand(agentCmd)
}

func runAgent(cmd *cobra.Command, _ []string) error {
	if agentRunner == nil {
		return errNotConfigured("agent")
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return agentRunner(ctx, AgentOptions{
		ControlAddr:    agentControlAddr,
		DisableControl: agentNoControl,
		MCPAddr:        agentMCPAddr,
	})
}
