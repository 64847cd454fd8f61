package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	serverrun "github.com/notiflow/eventchannel/internal/cmd/server"
)

func main() {
	_ = godotenv.Load(".env")

	rootCmd := &cobra.Command{
		Use:   "eventsd",
		Short: "Event dispatch and batched publication daemon",
	}

	startCmd := &cobra.Command{
		Use:   "start",
		Short: "Start the dispatcher and block until signalled to stop",
		RunE: func(cmd *cobra.Command, args []string) error {
			topicID, _ := cmd.Flags().GetString("topic")
			configPath, _ := cmd.Flags().GetString("config")
			dryRun, _ := cmd.Flags().GetBool("dry-run")
			metricsAddr, _ := cmd.Flags().GetString("metrics-addr")
			logLevel, _ := cmd.Flags().GetString("log-level")
			logFormat, _ := cmd.Flags().GetString("log-format")

			if err := serverrun.Run(context.Background(), serverrun.Options{
				TopicID:     topicID,
				ConfigPath:  configPath,
				SinkDryRun:  dryRun,
				MetricsAddr: metricsAddr,
				LogLevel:    logLevel,
				LogFormat:   logFormat,
			}); err != nil {
				return fmt.Errorf("eventsd: %w", err)
			}
			return nil
		},
	}
	startCmd.Flags().String("topic", os.Getenv("EVENTCHANNEL_TOPIC_ID"), "Topic ARN for the OrderCreated channel; overrides --config")
	startCmd.Flags().String("config", os.Getenv("EVENTCHANNEL_CONFIG"), "Path to a JSON or YAML config file for the OrderCreated channel")
	startCmd.Flags().Bool("dry-run", os.Getenv("EVENTCHANNEL_DRY_RUN") == "true", "Use an in-memory sink instead of AWS SNS")
	startCmd.Flags().String("metrics-addr", os.Getenv("EVENTCHANNEL_METRICS_ADDR"), "Address to serve Prometheus metrics on (empty disables it)")
	startCmd.Flags().String("log-level", os.Getenv("EVENTCHANNEL_LOG_LEVEL"), "Log level: debug|info|warn|error")
	startCmd.Flags().String("log-format", os.Getenv("EVENTCHANNEL_LOG_FORMAT"), "Log format: text|json")
	rootCmd.AddCommand(startCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
