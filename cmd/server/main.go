package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pointsync/pointsync/internal/core/protocol"
	"github.com/pointsync/pointsync/internal/injector"
	"github.com/pointsync/pointsync/internal/server"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		listenAddr string
		transport  string
		logLevel   string
	)

	rootCmd := &cobra.Command{
		Use:   "pointsyncd",
		Short: "Authoritative replication server for point entities",
		RunE: func(cmd *cobra.Command, _ []string) error {
			config := server.DefaultConfig()
			if configPath != "" {
				loaded, err := server.LoadConfig(configPath)
				if err != nil {
					return err
				}
				config = loaded
			}
			if listenAddr != "" {
				config.ListenAddr = listenAddr
			}
			if transport != "" {
				config.Transport = protocol.TransportKind(transport)
			}
			if logLevel != "" {
				config.LogLevel = logLevel
			}

			return run(cmd.Context(), config)
		},
		SilenceUsage: true,
	}

	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to YAML config file")
	rootCmd.Flags().StringVarP(&listenAddr, "listen", "l", "", "Listen address override")
	rootCmd.Flags().StringVarP(&transport, "transport", "t", "", "Transport override: websocket, quic")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "", "Log level override: debug, info, warn, error")

	return rootCmd
}

func run(ctx context.Context, config server.Config) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	srv := injector.InitializeServer(config)
	defer func() { _ = srv.Close() }()

	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, os.Interrupt, syscall.SIGTERM)
	<-stopCh

	cancel()
	return srv.Stop(context.Background())
}
