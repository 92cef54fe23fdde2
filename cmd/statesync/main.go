// statesync is the cluster state synchronization daemon.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/clustermesh/statesync/config"
	"github.com/clustermesh/statesync/node"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	conf := config.DefaultConfig()
	c := &cobra.Command{
		Use:           "statesync",
		Short:         "best-effort cluster state synchronization daemon",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if conf.ConfigFile != "" {
				if err := config.LoadConfig(conf.ConfigFile, viper.New(), &conf); err != nil {
					return err
				}
			}
			logger, err := conf.Logging.Build()
			if err != nil {
				return err
			}
			defer logger.Sync()

			n, err := node.New(conf, logger)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return n.Run(ctx)
		},
	}
	addFlags(c.PersistentFlags(), &conf)
	return c
}

func addFlags(flags *pflag.FlagSet, conf *config.Config) {
	flags.StringVarP(&conf.ConfigFile, "config", "c",
		conf.ConfigFile, "load configuration from file")
	flags.StringVar(&conf.P2P.Listen, "listen",
		conf.P2P.Listen, `address to accept peer connections on ("." disables the listener role)`)
	flags.StringVar(&conf.P2P.Upstream, "upstream",
		conf.P2P.Upstream, `upstream peer to hold one outbound connection to ("." disables the initiator role)`)
	flags.DurationVar(&conf.Syncer.SyncInterval, "sync-interval",
		conf.Syncer.SyncInterval, "cadence of the broadcast tick")
	flags.BoolVar(&conf.CollectMetrics, "metrics",
		conf.CollectMetrics, "collect node metrics")
	flags.IntVar(&conf.MetricsPort, "metrics-port",
		conf.MetricsPort, "metrics server port")
	flags.StringVar(&conf.Logging.Encoder, "log-encoder",
		conf.Logging.Encoder, "log encoding, console or json")
	flags.StringVar(&conf.Logging.Level, "log-level",
		conf.Logging.Level, "minimum log level")
}
