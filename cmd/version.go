package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rackprobe/raritan-pdu-exporter/internal/version"
)

var versionCmd = &cobra.Command{
	Use: "version",
	Run: func(cmd *cobra.Command, args []string) {
		if cmd.Flag("all").Value.String() == "true" {
			version.PrintVersionInfo()
		} else {
			fmt.Println(version.Version)
		}
	},
}

func init() {
	versionCmd.Flags().Bool("all", false, "show all version and build information")
	rootCmd.AddCommand(versionCmd)
}
