package cmd

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/rackprobe/raritan-pdu-exporter/internal/cache/sqlite"
	"github.com/rackprobe/raritan-pdu-exporter/internal/format"
)

var listFormat format.DataFormat

// The `list` command provides an easy way to show what was found
// and stored in the inventory cache by a crawl.
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List PDU topology stored in the inventory cache",
	Long: "Prints all connectors and sensors found by previous crawls.\n" +
		"See the 'crawl' command on how to populate the cache.\n\n" +
		"Examples:\n" +
		"  raritan-pdu-exporter list\n" +
		"  raritan-pdu-exporter list --cache ./inventory.db --format json",
	Run: func(cmd *cobra.Command, args []string) {
		inventory, err := sqlite.GetInventory(viper.GetString("cache"))
		if err != nil {
			log.Error().Err(err).Msg("failed to read inventory cache")
			return
		}
		if listFormat != "" {
			b, err := format.Marshal(inventory, listFormat)
			if err != nil {
				log.Error().Err(err).Msg("failed to marshal inventory")
				return
			}
			fmt.Printf("%s\n", string(b))
			return
		}
		for _, c := range inventory.Connectors {
			fmt.Printf("%s: %s (%s) %q @ %s\n",
				c.PDU, c.RID, c.Type, c.CustomLabel, c.Timestamp.Format(time.UnixDate))
		}
		for _, s := range inventory.Sensors {
			fmt.Printf("%s: %s (%s@%s) -> %s\n",
				s.PDU, s.RID, s.Name, s.Connector, s.Longname)
		}
	},
}

func init() {
	listCmd.Flags().Var(&listFormat, "format", "Set the output format (json|yaml)")
	rootCmd.AddCommand(listCmd)
}
