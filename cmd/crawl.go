package cmd

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/rackprobe/raritan-pdu-exporter/internal/cache/sqlite"
	"github.com/rackprobe/raritan-pdu-exporter/internal/format"
	"github.com/rackprobe/raritan-pdu-exporter/internal/url"
	"github.com/rackprobe/raritan-pdu-exporter/pkg/raritan"
)

var (
	crawlFormat = format.FORMAT_JSON
	crawlRead   bool
	noCache     bool
)

// Flat views of the entity graph for display. The entities themselves
// carry back-references and cannot be marshalled directly.
type (
	connectorOut struct {
		RID         string `json:"rid" yaml:"rid"`
		Type        string `json:"type" yaml:"type"`
		Label       string `json:"label" yaml:"label"`
		CustomLabel string `json:"custom_label" yaml:"custom_label"`
		Socket      string `json:"socket,omitempty" yaml:"socket,omitempty"`
	}
	poleOut struct {
		Inlet       string `json:"inlet" yaml:"inlet"`
		CustomLabel string `json:"custom_label" yaml:"custom_label"`
		Line        int    `json:"line" yaml:"line"`
		NodeID      int    `json:"node_id" yaml:"node_id"`
	}
	sensorOut struct {
		RID       string   `json:"rid" yaml:"rid"`
		Parent    string   `json:"parent" yaml:"parent"`
		Name      string   `json:"name" yaml:"name"`
		Metric    string   `json:"metric" yaml:"metric"`
		Unit      string   `json:"unit" yaml:"unit"`
		Longname  string   `json:"longname,omitempty" yaml:"longname,omitempty"`
		Interface string   `json:"interface" yaml:"interface"`
		Value     *float64 `json:"value,omitempty" yaml:"value,omitempty"`
	}
	crawlOut struct {
		Name       string         `json:"name" yaml:"name"`
		Location   string         `json:"location" yaml:"location"`
		Connectors []connectorOut `json:"connectors" yaml:"connectors"`
		Poles      []poleOut      `json:"poles" yaml:"poles"`
		Sensors    []sensorOut    `json:"sensors" yaml:"sensors"`
	}
)

var crawlCmd = &cobra.Command{
	Use:   "crawl [uri]",
	Short: "Crawl a single PDU and print its electrical topology",
	Long: "Discovers all connectors (inlets, outlets, and device slots), inlet poles,\n" +
		"and sensors of one PDU over its bulk JSON-RPC interface.\n\n" +
		"Examples:\n" +
		"  raritan-pdu-exporter crawl https://pdu0.example.org -u admin -p secret\n" +
		"  raritan-pdu-exporter crawl pdu0.example.org --read --format yaml",
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		location, err := url.Sanitize(args[0])
		if err != nil {
			log.Fatal().Err(err).Msgf("invalid PDU location: %s", args[0])
		}

		pdu, err := raritan.New(raritan.Config{
			Location: location,
			Username: username,
			Password: password,
			Insecure: insecure,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to set up PDU client")
		}

		// a discovery failure is fatal: no partial topology is printed
		if err := pdu.Crawl(context.Background()); err != nil {
			log.Fatal().Err(err).Msgf("failed to crawl PDU %s", pdu.Name)
		}

		if crawlRead {
			pdu.ReadSensors(context.Background())
		}

		if !noCache {
			if err := sqlite.InsertInventory(viper.GetString("cache"), pdu); err != nil {
				log.Warn().Err(err).Msg("failed to cache inventory")
			}
		}

		b, err := format.Marshal(makeCrawlOut(pdu), crawlFormat)
		if err != nil {
			log.Error().Err(err).Msg("failed to marshal topology")
			return
		}
		fmt.Println(string(b))
	},
}

func makeCrawlOut(pdu *raritan.PDU) crawlOut {
	out := crawlOut{Name: pdu.Name, Location: pdu.Location}
	for _, c := range pdu.Connectors {
		out.Connectors = append(out.Connectors, connectorOut{
			RID:         c.RID,
			Type:        string(c.Type),
			Label:       c.Label,
			CustomLabel: c.CustomLabel,
			Socket:      c.Socket,
		})
	}
	for _, p := range pdu.Poles {
		out.Poles = append(out.Poles, poleOut{
			Inlet:       p.Inlet.Label,
			CustomLabel: p.CustomLabel,
			Line:        p.Line,
			NodeID:      p.NodeID,
		})
	}
	for _, s := range pdu.Sensors {
		so := sensorOut{
			RID:       s.RID,
			Parent:    s.Parent.ExportLabel(),
			Name:      s.Name,
			Metric:    s.Metric,
			Unit:      s.Unit,
			Longname:  s.Longname,
			Interface: s.Interface,
		}
		if r := s.Reading(); r != nil {
			so.Value = r.Value
		}
		out.Sensors = append(out.Sensors, so)
	}
	return out
}

func init() {
	crawlCmd.Flags().StringVarP(&username, "username", "u", "", "Set the PDU username")
	crawlCmd.Flags().StringVarP(&password, "password", "p", "", "Set the PDU password")
	crawlCmd.Flags().BoolVarP(&insecure, "insecure", "i", false, "Ignore SSL errors")
	crawlCmd.Flags().BoolVar(&crawlRead, "read", false, "Also read all sensor values once")
	crawlCmd.Flags().BoolVar(&noCache, "no-cache", false, "Do not write the discovered topology to the inventory cache")
	crawlCmd.Flags().Var(&crawlFormat, "format", "Set the output format (json|yaml)")

	rootCmd.AddCommand(crawlCmd)
}
