package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lexai/backend/config"
	"github.com/lexai/backend/llm"
	"github.com/lexai/backend/pkg/logger"
	"github.com/lexai/backend/service"
)

var version = "0.1.0-dev"

const defaultConfigPath = "config.yaml"

// exitError carries a process exit code other than 1.
type exitError struct {
	code int
}

func (e *exitError) Error() string { return fmt.Sprintf("exit status %d", e.code) }

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:], os.Stdout, llm.New); err != nil {
		var exitErr *exitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.code)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// run executes the CLI. newProvider builds the model client for every
// command that needs one.
func run(ctx context.Context, args []string, stdout io.Writer, newProvider llm.Factory) error {
	var configPath string

	rootCmd := &cobra.Command{
		Use:           "lexai",
		Short:         "Audit contracts against company policy with an LLM",
		Long:          "LexAI compares a contract against a policy document clause by clause and answers follow-up questions about the result.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), configPath, cmd.Flags().Changed("config"), newProvider)
		},
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", defaultConfigPath, "Path to the YAML config file")

	rootCmd.AddCommand(
		newServeCmd(&configPath, newProvider),
		newAuditCmd(&configPath, newProvider),
	)

	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	return rootCmd.ExecuteContext(ctx)
}

// loadConfig reads the config file. The default path may be absent, in
// which case environment variables and defaults are used alone.
func loadConfig(path string, explicit bool) (*config.Config, error) {
	if !explicit {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			path = ""
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

func initLogger(cfg *config.Config, out io.Writer) {
	logger.Init(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: out,
	})
}

// buildAuditor wires the provider and extractor named in cfg. The caller
// closes the returned provider.
func buildAuditor(ctx context.Context, cfg *config.Config, newProvider llm.Factory) (llm.Provider, *service.Auditor, error) {
	if newProvider == nil {
		newProvider = llm.New
	}

	extractor, err := service.NewExtractor(cfg.Extractor)
	if err != nil {
		return nil, nil, fmt.Errorf("creating extractor: %w", err)
	}

	provider, err := newProvider(ctx, cfg.LLM)
	if err != nil {
		return nil, nil, fmt.Errorf("creating llm provider: %w", err)
	}

	auditor, err := service.NewAuditor(provider, extractor, service.OptionsFromConfig(cfg))
	if err != nil {
		provider.Close()
		return nil, nil, err
	}
	return provider, auditor, nil
}
