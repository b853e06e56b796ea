package cli

import (
	"github.com/spf13/cobra"
)

var networkCmd = &cobra.Command{
	Use:   "network",
	Short: "Report or override connectivity",
}

var networkCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Probe the storefront API once",
	Long: `Probes the storefront API. A change in connectivity is applied: going
online drains the queue and runs a full-sync cycle.`,
	RunE: runNetworkCheck,
}

var networkOnlineCmd = &cobra.Command{
	Use:   "online",
	Short: "Mark the device online, draining the queue and syncing",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return setConnectivity(cmd, true)
	},
}

var networkOfflineCmd = &cobra.Command{
	Use:   "offline",
	Short: "Mark the device offline so mutations are queued",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return setConnectivity(cmd, false)
	},
}

func init() {
	networkCmd.AddCommand(networkCheckCmd)
	networkCmd.AddCommand(networkOnlineCmd)
	networkCmd.AddCommand(networkOfflineCmd)
	rootCmd.AddCommand(networkCmd)
}

func runNetworkCheck(cmd *cobra.Command, _ []string) error {
	if connectivity == nil {
		return errNotConfigured("network")
	}
	if connectivity.Check(commandContext(cmd)) {
		cmd.Println("Storefront API reachable.")
	} else {
		cmd.Println("Storefront API unreachable.")
	}
	return nil
}

func setConnectivity(cmd *cobra.Command, online bool) error {
	if networkHandler == nil {
		return errNotConfigured("network")
	}
	networkHandler.HandleConnectivityChange(commandContext(cmd), online)
	if online {
		cmd.Println("Marked online.")
	} else {
		cmd.Println("Marked offline.")
	}
	return nil
}
