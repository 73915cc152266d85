package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"FinSim/internal/di"
	"FinSim/internal/usecase"
	"FinSim/pkg/config"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		envFile    string
	)

	load := func() (*config.Config, error) {
		cfg, err := config.LoadWithEnv(configPath, envFile)
		if err != nil {
			return nil, fmt.Errorf("config load failed: %w", err)
		}
		return cfg, nil
	}

	root := &cobra.Command{
		Use:           "finsim",
		Short:         "FinSim hosts aFCN trading agents on a paper market",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "config/config.yaml", "config file path")
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before the config")

	root.AddCommand(newServeCmd(load))
	root.AddCommand(newSimulateCmd(load))
	root.AddCommand(newValidateCmd(load))
	root.AddCommand(newVersionCmd())
	return root
}

type loader func() (*config.Config, error)

func newServeCmd(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and, with session.auto_run, the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			log.Printf("env=%s sink=%s state=%s", cfg.Environment, cfg.Backend.Sink, cfg.Backend.State)

			app, err := di.InitializeApp(cfg)
			if err != nil {
				return fmt.Errorf("app initialization failed: %w", err)
			}
			return app.Run(cmd.Context())
		},
	}
}

func newSimulateCmd(load loader) *cobra.Command {
	var (
		steps int
		seed  int64
	)
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run a headless session and print its summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			if steps > 0 {
				cfg.Session.Steps = steps
			}
			if cmd.Flags().Changed("seed") {
				cfg.Session.Seed = seed
			}
			cfg.Session.AutoRun = false
			cfg.Session.TickInterval = 0

			app, err := di.InitializeApp(cfg)
			if err != nil {
				return fmt.Errorf("app initialization failed: %w", err)
			}
			sum, err := app.Simulate(cmd.Context())
			if err != nil {
				return err
			}
			return printSummary(cmd, sum, app.Session().Agents())
		},
	}
	cmd.Flags().IntVar(&steps, "steps", 0, "ticks to run (overrides session.steps)")
	cmd.Flags().Int64Var(&seed, "seed", 0, "session seed (overrides session.seed)")
	return cmd
}

func printSummary(cmd *cobra.Command, sum usecase.Summary, agents []usecase.AgentInfo) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		Summary usecase.Summary     `json:"summary"`
		Agents  []usecase.AgentInfo `json:"agents"`
	}{sum, agents})
}

func newValidateCmd(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the config and resolve every agent's parameters",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			specs, err := usecase.BuildAgents(cfg.Agents, cfg.Market.ID, nil)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "config ok: %d agent(s) on %s, sink=%s state=%s\n",
				len(specs), cfg.Market.ID, cfg.Backend.Sink, cfg.Backend.State)
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "finsim %s\n", version)
		},
	}
}
