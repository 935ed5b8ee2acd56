package cmd

import (
	"github.com/spf13/cobra"

	"github.com/skyrent/fleetlink/pkg/cmd/server"
)

// serveFleetCmd represents the serve fleet command
var serveFleetCmd = &cobra.Command{
	Use:   "fleet",
	Short: "Start the drone fleet control server",
	Run:   server.RunServeFleet(c),
}

func init() {
	serveCmd.AddCommand(serveFleetCmd)
}
