package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/aescanero/climeai/internal/application/agent"
	"github.com/aescanero/climeai/internal/config"
	"github.com/aescanero/climeai/internal/env"
	"github.com/aescanero/climeai/pkg/adapters/llm"
	"github.com/aescanero/climeai/pkg/adapters/metrics/noop"
	memorystorage "github.com/aescanero/climeai/pkg/adapters/storage/memory"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Version is set by build flags
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	var envFile string

	rootCmd := &cobra.Command{
		Use:     "climeai",
		Short:   "ClimeAI weather and climate agent",
		Version: fmt.Sprintf("%s (built %s)", Version, BuildTime),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(envFile)
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "optional KEY=VALUE file loaded before configuration")

	rootCmd.AddCommand(
		serveCmd(&envFile),
		providerCmd(&envFile),
		chatCmd(&envFile),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func serveCmd(envFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP, WebSocket and gRPC servers",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(*envFile)
		},
	}
}

func providerCmd(envFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "provider",
		Short: "Print the model provider a chat would use now",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := env.Load(*envFile); err != nil {
				return fmt.Errorf("failed to load %s: %w", *envFile, err)
			}

			client := llm.SelectClient(nil)
			out := map[string]interface{}{
				"provider":  client.Provider(),
				"model":     client.Model(),
				"fallback":  client.Provider() == llm.FakeProviderName,
				"available": llm.DefaultRegistry().Names(),
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
}

func chatCmd(envFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "chat <message>",
		Short: "Run a single chat turn without persisting it",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := bootstrap(*envFile)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			service := agent.NewService(
				llm.NewSelector(llm.WithLogger(logger)),
				memorystorage.NewConversationStore(),
				nil,
				noop.Collector{},
				agent.DefaultToolbox(),
				agent.Config{
					SystemPrompt:      cfg.Agent.SystemPrompt,
					MaxToolIterations: cfg.Agent.MaxToolIterations,
					MaxMessageLength:  cfg.Agent.MaxMessageLength,
				},
				logger,
			)

			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Timeouts.ChatTimeout)
			defer cancel()

			reply, err := service.Chat(ctx, agent.ChatRequest{Message: strings.Join(args, " ")})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "[%s/%s] %s\n", reply.Provider, reply.Model, reply.Content)
			return nil
		},
	}
}

// bootstrap loads the env file, configuration and logger
func bootstrap(envFile string) (*config.Config, *zap.Logger, error) {
	if err := env.Load(envFile); err != nil {
		return nil, nil, fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, initLogger(cfg.LogLevel), nil
}

// initLogger initializes the logger based on log level
func initLogger(level string) *zap.Logger {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(zapLevel)
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := config.Build()
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}

	return logger
}
