package cmd

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/rackprobe/raritan-pdu-exporter/internal/cache/sqlite"
	"github.com/rackprobe/raritan-pdu-exporter/internal/exporter"
	"github.com/rackprobe/raritan-pdu-exporter/internal/poller"
	"github.com/rackprobe/raritan-pdu-exporter/internal/url"
	"github.com/rackprobe/raritan-pdu-exporter/pkg/daemon"
	"github.com/rackprobe/raritan-pdu-exporter/pkg/raritan"
)

// PDUTarget is one 'pdus:' entry from the config file.
type PDUTarget struct {
	Name     string `mapstructure:"name"`
	Address  string `mapstructure:"address"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Insecure bool   `mapstructure:"insecure"`
}

var serveCmd = &cobra.Command{
	Use:   "serve [hosts...]",
	Short: "Run the exporter daemon: crawl PDUs and serve /metrics",
	Long: "Discovers the topology of every configured PDU once at startup, then polls\n" +
		"sensor values on a fixed interval and exposes them for Prometheus scrapes.\n" +
		"PDUs can be passed as host arguments or listed under 'pdus:' in the config\n" +
		"file.\n\n" +
		"Examples:\n" +
		"  raritan-pdu-exporter serve pdu0.example.org -u admin -p secret\n" +
		"  raritan-pdu-exporter serve --config config.yaml --listen :9840 --interval 10s",
	Run: func(cmd *cobra.Command, args []string) {
		// flags win over config file entries via the viper bindings
		listenAddr := viper.GetString("serve.listen")
		pollInterval := viper.GetDuration("serve.interval")

		var targets []PDUTarget
		if err := viper.UnmarshalKey("pdus", &targets); err != nil {
			log.Fatal().Err(err).Msg("failed to parse 'pdus' config entries")
		}
		for _, host := range args {
			targets = append(targets, PDUTarget{
				Address:  host,
				Username: username,
				Password: password,
				Insecure: insecure,
			})
		}
		if len(targets) == 0 {
			log.Fatal().Msg("no PDUs configured; pass host arguments or set 'pdus' in the config file")
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		// discovery runs to completion before any poll; a failure here is
		// fatal to startup
		pdus := make([]*raritan.PDU, 0, len(targets))
		for _, target := range targets {
			location, err := url.Sanitize(target.Address)
			if err != nil {
				log.Fatal().Err(err).Msgf("invalid PDU address: %s", target.Address)
			}
			pdu, err := raritan.New(raritan.Config{
				Location: location,
				Name:     target.Name,
				Username: target.Username,
				Password: target.Password,
				Insecure: target.Insecure,
			})
			if err != nil {
				log.Fatal().Err(err).Msgf("failed to set up PDU %s", target.Address)
			}
			if err := pdu.Crawl(ctx); err != nil {
				log.Fatal().Err(err).Msgf("failed to crawl PDU %s", pdu.Name)
			}
			if err := sqlite.InsertInventory(viper.GetString("cache"), pdu); err != nil {
				log.Warn().Err(err).Msg("failed to cache inventory")
			}
			pdus = append(pdus, pdu)
		}

		registry := prometheus.NewRegistry()
		registry.MustRegister(exporter.NewCollector(pdus...))

		// one poller per PDU so cycles for a PDU never overlap
		pollers := make([]*poller.Poller, 0, len(pdus))
		for _, pdu := range pdus {
			p := poller.New(pdu, pollInterval)
			p.Start(ctx)
			pollers = append(pollers, p)
		}
		defer func() {
			for _, p := range pollers {
				p.Stop()
			}
		}()

		errCh := make(chan error, 1)
		go func() {
			errCh <- daemon.RunServer(listenAddr, registry)
		}()
		log.Info().Msgf("serving metrics on %s for %d PDU(s)", listenAddr, len(pdus))

		select {
		case <-ctx.Done():
			log.Info().Msg("shutdown signal received")
		case err := <-errCh:
			if err != nil {
				log.Error().Err(err).Msg("metrics server failed")
			}
		}
	},
}

func init() {
	serveCmd.Flags().StringVarP(&username, "username", "u", "", "Set the PDU username")
	serveCmd.Flags().StringVarP(&password, "password", "p", "", "Set the PDU password")
	serveCmd.Flags().BoolVarP(&insecure, "insecure", "i", false, "Ignore SSL errors")
	serveCmd.Flags().String("listen", ":9840", "Set the address to serve metrics on")
	serveCmd.Flags().Duration("interval", 10*time.Second, "Set the sensor poll interval")

	checkBindFlagError(viper.BindPFlag("serve.listen", serveCmd.Flags().Lookup("listen")))
	checkBindFlagError(viper.BindPFlag("serve.interval", serveCmd.Flags().Lookup("interval")))

	rootCmd.AddCommand(serveCmd)
}
