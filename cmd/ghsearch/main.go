// ghsearch is the sandbox-tool runtime for the GitHub search agent. It wires
// the environment provider, the session registry, and the output store into
// the tool registry the agent runtime calls, and exposes the same tools on
// the command line for direct use.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/RhysSullivan/github-search-agent/internal/config"
	"github.com/RhysSullivan/github-search-agent/internal/logging"
	"github.com/RhysSullivan/github-search-agent/internal/outputs"
	"github.com/RhysSullivan/github-search-agent/internal/sandbox"
	"github.com/RhysSullivan/github-search-agent/internal/sandbox/vercel"
	"github.com/RhysSullivan/github-search-agent/internal/tools"
	"github.com/RhysSullivan/github-search-agent/internal/tools/sandboxtools"
)

const version = "0.3.0"

var (
	configPath string
	debug      bool

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "ghsearch",
	Short: "Sandbox tool runtime for the GitHub search agent",
	Long: `ghsearch manages per-conversation remote sandboxes: it clones a
repository into an isolated environment on first use, runs commands in it,
records their full output, and answers searches over that output even after
truncation.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		level := cfg.Logging.Level
		if debug {
			level = "debug"
		}
		if err := logging.Init(level, cfg.Logging.Development); err != nil {
			return fmt.Errorf("init logging: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Sync()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("ghsearch %s\n", version)
	},
}

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List the tools advertised to the agent runtime",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, _, err := buildRuntime()
		if err != nil {
			return err
		}
		for _, name := range reg.Names() {
			tool := reg.Get(name)
			fmt.Printf("%-22s %s\n", tool.Name, tool.Description)
		}
		return nil
	},
}

var callCmd = &cobra.Command{
	Use:   "call <tool> [json-args]",
	Short: "Invoke one tool with JSON-encoded arguments",
	Long: `Invoke a tool by name, passing its arguments as a JSON object.

Example:
  ghsearch call runSandboxCommand '{"repositoryUrl":"https://github.com/golang/go","command":"ls"}'`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		toolArgs := map[string]any{}
		if len(args) == 2 {
			if err := json.Unmarshal([]byte(args[1]), &toolArgs); err != nil {
				return fmt.Errorf("parse arguments: %w", err)
			}
		}

		reg, exec, err := buildRuntime()
		if err != nil {
			return err
		}

		ctx, cancel := signalContext()
		defer cancel()
		defer exec.TeardownAll(context.Background())

		result, err := reg.Execute(ctx, args[0], toolArgs)
		if err != nil {
			return err
		}

		fmt.Println(result.Result)
		logging.L().Debug("tool call finished",
			zap.String("tool", args[0]),
			zap.Int64("duration_ms", result.DurationMs))
		return nil
	},
}

var teardownCmd = &cobra.Command{
	Use:   "teardown [chatId]",
	Short: "Stop a conversation's sandbox, or all of them",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, exec, err := buildRuntime()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if len(args) == 1 {
			exec.Teardown(ctx, args[0])
			fmt.Printf("tore down sandbox for %s\n", args[0])
			return nil
		}
		exec.TeardownAll(ctx)
		fmt.Println("tore down all sandboxes")
		return nil
	},
}

// buildRuntime assembles provider, registry, store, executor, and tools from
// the loaded config.
func buildRuntime() (*tools.Registry, *sandbox.Executor, error) {
	provider := vercel.New(vercel.ClientConfig{
		BaseURL: cfg.Sandbox.BaseURL,
		Token:   cfg.Sandbox.Token,
	}, logging.Provider())

	provisioner := sandbox.NewProvisioner(provider, sandbox.ProvisionerConfig{
		VCPUs:            cfg.Sandbox.VCPUs,
		Runtime:          cfg.Sandbox.Runtime,
		SessionTimeout:   cfg.Sandbox.SessionTimeoutDuration(),
		ProvisionTimeout: cfg.Sandbox.ProvisionTimeoutDuration(),
		Credentials: sandbox.Credentials{
			TeamID:    cfg.Sandbox.TeamID,
			ProjectID: cfg.Sandbox.ProjectID,
			Token:     cfg.Sandbox.Token,
		},
	}, logging.Sandbox())

	registry := sandbox.NewRegistry(provisioner, logging.Sandbox())
	store := outputs.NewStore(logging.Outputs())
	exec := sandbox.NewExecutor(registry, store, logging.Sandbox())

	reg := tools.NewRegistry(logging.Tools())
	if err := sandboxtools.RegisterAll(reg, exec, store); err != nil {
		return nil, nil, err
	}
	return reg, exec, nil
}

// signalContext returns a context cancelled on SIGINT/SIGTERM, and also
// starts the config watcher so log level changes apply without a restart.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-sig:
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sig)
	}()

	if configPath != "" {
		go func() {
			err := config.Watch(ctx, configPath, logging.L(), func(updated *config.Config) {
				if err := logging.SetLevel(updated.Logging.Level); err != nil {
					logging.L().Warn("invalid log level in updated config",
						zap.String("level", updated.Logging.Level), zap.Error(err))
				}
			})
			if err != nil && ctx.Err() == nil {
				logging.L().Warn("config watcher stopped", zap.Error(err))
			}
		}()
	}

	return ctx, cancel
}

func main() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(versionCmd, toolsCmd, callCmd, teardownCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
