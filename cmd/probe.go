package cmd

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/stmcginnis/gofish"

	"github.com/rackprobe/raritan-pdu-exporter/internal/url"
)

// Newer Raritan firmware also exposes a Redfish service next to the bulk
// JSON-RPC interface. The `probe` command checks for it and reports the
// chassis identity, which helps confirm which unit a host name points at.
var probeCmd = &cobra.Command{
	Use:   "probe [uri]",
	Short: "Check whether a PDU also exposes a Redfish service",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		location, err := url.Sanitize(args[0])
		if err != nil {
			log.Fatal().Err(err).Msgf("invalid PDU location: %s", args[0])
		}

		client, err := gofish.Connect(gofish.ClientConfig{
			Endpoint:  location,
			Username:  username,
			Password:  password,
			Insecure:  insecure,
			BasicAuth: true,
		})
		if err != nil {
			log.Info().Msgf("no Redfish service found at %s: %v", location, err)
			return
		}
		defer client.Logout()

		chassis, err := client.Service.Chassis()
		if err != nil {
			log.Error().Err(err).Msg("failed to query chassis")
			return
		}
		for _, ch := range chassis {
			fmt.Printf("%s: manufacturer=%q model=%q serial=%q power=%s\n",
				ch.ID, ch.Manufacturer, ch.Model, ch.SerialNumber, ch.PowerState)
		}
	},
}

func init() {
	probeCmd.Flags().StringVarP(&username, "username", "u", "", "Set the PDU username")
	probeCmd.Flags().StringVarP(&password, "password", "p", "", "Set the PDU password")
	probeCmd.Flags().BoolVarP(&insecure, "insecure", "i", false, "Ignore SSL errors")
	rootCmd.AddCommand(probeCmd)
}
