// The cmd package implements the interface for the raritan-pdu-exporter
// CLI. The files contained in this package only contain implementations
// for handling CLI arguments and passing them to the crawling and
// exporting routines in pkg/ and internal/.
//
// For example:
//
//	cmd/crawl.go --> pkg/raritan ( PDU.Crawl() )
//	cmd/serve.go --> internal/poller + internal/exporter + pkg/daemon
//	cmd/list.go  --> internal/cache/sqlite
package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	ilog "github.com/rackprobe/raritan-pdu-exporter/internal/log"
	"github.com/rackprobe/raritan-pdu-exporter/internal/util"
)

var (
	username string
	password string
	insecure bool
)

// The `root` command doesn't do anything on its own except display
// a help message and then exits.
var rootCmd = &cobra.Command{
	Use:   "raritan-pdu-exporter",
	Short: "Raritan PDU discovery and sensor exporter",
	Long:  "Discovers the electrical topology of Raritan PDUs over the bulk JSON-RPC interface and exports live sensor readings.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := ilog.INFO
		if viper.GetBool("debug") {
			level = ilog.DEBUG
		}
		return ilog.InitWithLogLevel(level, viper.GetString("log-path"))
	},
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			err := cmd.Help()
			if err != nil {
				log.Error().Err(err).Msg("failed to print help")
			}
			os.Exit(0)
		}
	},
}

// This Execute() function is called from main to run the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(InitializeConfig)
	rootCmd.PersistentFlags().IntP("timeout", "t", 10, "Set the timeout for requests in seconds")
	rootCmd.PersistentFlags().StringP("config", "c", "", "Set the config file path")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Set to enable/disable verbose output")
	rootCmd.PersistentFlags().Bool("debug", false, "Set to enable/disable debug messages")
	rootCmd.PersistentFlags().String("log-path", "", "Set a path to also write logs to a file")
	rootCmd.PersistentFlags().String("cache", fmt.Sprintf("/tmp/%s/raritan-pdu-exporter/inventory.db", util.GetCurrentUsername()), "Set the inventory cache path")

	// bind viper config flags with cobra
	checkBindFlagError(viper.BindPFlag("timeout", rootCmd.PersistentFlags().Lookup("timeout")))
	checkBindFlagError(viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config")))
	checkBindFlagError(viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose")))
	checkBindFlagError(viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug")))
	checkBindFlagError(viper.BindPFlag("log-path", rootCmd.PersistentFlags().Lookup("log-path")))
	checkBindFlagError(viper.BindPFlag("cache", rootCmd.PersistentFlags().Lookup("cache")))
}

func checkBindFlagError(err error) {
	if err != nil {
		log.Error().Err(err).Msg("failed to bind cobra/viper flag")
	}
}

// InitializeConfig() initializes a new config object by loading it
// from a file given a non-empty string.
func InitializeConfig() {
	viper.AutomaticEnv()
	if viper.IsSet("config") && viper.GetString("config") != "" {
		viper.SetConfigFile(viper.GetString("config"))
	} else {
		config_dir := os.Getenv("XDG_CONFIG_HOME")
		if config_dir == "" {
			config_dir = "$HOME/.config"
		}
		viper.AddConfigPath(config_dir + "/raritan-pdu-exporter")
		viper.SetConfigName("config")
		// File type left unspecified; Viper will auto-parse based on extension
	}
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Debug().Msg("no config file found; using flags and environment only")
		} else {
			log.Error().Err(err).Msg("failed to load config file")
		}
	}
}

// SetDefaults() resets all of the viper properties back to their
// default values.
func SetDefaults() {
	viper.SetDefault("timeout", 10)
	viper.SetDefault("config", "")
	viper.SetDefault("verbose", false)
	viper.SetDefault("debug", false)
	viper.SetDefault("cache", fmt.Sprintf("/tmp/%s/raritan-pdu-exporter/inventory.db", util.GetCurrentUsername()))
	viper.SetDefault("serve.listen", ":9840")
	viper.SetDefault("serve.interval", "10s")
	viper.SetDefault("pdus", []map[string]any{})
}
