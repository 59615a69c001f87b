package main

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/KOMKZ/yogan-sessionguard/application"
	"github.com/KOMKZ/yogan-sessionguard/config"
	"github.com/KOMKZ/yogan-sessionguard/flagx"
	"github.com/spf13/cobra"
)

const envPrefix = "SG"

// configFlags are shared by every subcommand.
type configFlags struct {
	Config string `flag:"config,c" usage:"path to the base YAML config file"`
	Env    string `flag:"env,e" usage:"environment name, selects <dir>/<env>.yaml and the cookie Secure default"`
}

// serverFlags override server.* when given explicitly.
type serverFlags struct {
	Host            string        `flag:"host" usage:"listen host"`
	Port            int           `flag:"port,p" usage:"listen port"`
	ShutdownTimeout time.Duration `flag:"shutdown-timeout" usage:"graceful shutdown timeout"`
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "sessionguard",
		Short:         "CSRF protection and JWT revocation service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCmd(), newCheckConfigCmd())
	return root
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server and the revocation sweeper",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			app, err := application.New(cfg)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return app.Run(ctx)
		},
	}
	mustBind(cmd, &configFlags{}, &serverFlags{})
	return cmd
}

func newCheckConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check-config",
		Short: "Load and validate the configuration, then exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "config ok: env=%s addr=%s revocation=%s\n",
				cfg.Environment, cfg.Server.Addr(), cfg.Revocation.Storage)
			return nil
		},
	}
	mustBind(cmd, &configFlags{}, &serverFlags{})
	return cmd
}

func mustBind(cmd *cobra.Command, targets ...any) {
	for _, t := range targets {
		if err := flagx.Bind(cmd, t); err != nil {
			panic(err)
		}
	}
}

// loadConfig layers file, environment overlay, SG_* variables and finally
// explicitly set flags.
func loadConfig(cmd *cobra.Command) (*application.Config, error) {
	var cf configFlags
	if err := flagx.Parse(cmd, &cf); err != nil {
		return nil, err
	}
	env := cf.Env
	if env == "" {
		env = config.Environment()
	}

	loader, err := config.NewBuilder().
		WithFile(cf.Config).
		WithEnvironment(env).
		WithEnvPrefix(envPrefix).
		Build()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if cmd.Flags().Changed("env") || !loader.IsSet("environment") {
		loader.Viper().Set("environment", env)
	}

	cfg, err := application.LoadConfig(loader)
	if err != nil {
		return nil, err
	}

	sf := serverFlags{
		Host:            cfg.Server.Host,
		Port:            cfg.Server.Port,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}
	if err := flagx.ParseChanged(cmd, &sf); err != nil {
		return nil, err
	}
	cfg.Server.Host = sf.Host
	cfg.Server.Port = sf.Port
	cfg.Server.ShutdownTimeout = sf.ShutdownTimeout

	if err := cfg.Server.Validate(); err != nil {
		return nil, fmt.Errorf("invalid server flags: %w", err)
	}
	return cfg, nil
}
