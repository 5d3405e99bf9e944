// Package cmd implements the maxtext command line interface.
package cmd

import (
	"fmt"
	"log/slog"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Edwinhr716/maxtext/config"
	"github.com/Edwinhr716/maxtext/envconfig"
	"github.com/Edwinhr716/maxtext/server"
	"github.com/Edwinhr716/maxtext/sharding"
	"github.com/Edwinhr716/maxtext/version"
)

func NewCLI() *cobra.Command {
	slog.SetLogLoggerLevel(envconfig.LogLevel())

	rootCmd := &cobra.Command{
		Use:   "maxtext",
		Short: "Sharding planner for transformer inference",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Disable usage printing on errors
			cmd.SilenceUsage = true
		},
	}

	rootCmd.PersistentFlags().StringP("config", "f", "", "Path to the configuration document (default $MAXTEXT_CONFIG)")

	cobra.EnableCommandSorting = false

	rootCmd.AddCommand(
		NewValidateCmd(),
		NewResolveCmd(),
		NewPlanCmd(),
		NewServeCmd(),
		NewVersionCmd(),
	)

	return rootCmd
}

// loadConfig reads the configuration document named by --config or
// MAXTEXT_CONFIG.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	if path == "" {
		path = envconfig.ConfigPath
	}
	if path == "" {
		return nil, fmt.Errorf("no configuration document: pass --config or set MAXTEXT_CONFIG")
	}

	return config.LoadFile(path)
}

func NewValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate a configuration document against its mesh",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			for _, w := range cfg.Report.Warnings {
				fmt.Fprintf(os.Stderr, "warning: %s\n", w)
			}

			fmt.Printf("%s: mesh %s, %d axis rules\n", cfg.ModelName, cfg.Mesh.String(), cfg.Rules.Len())
			return nil
		},
	}
}

func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("maxtext version %s\n", version.Version)
		},
	}
}

func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "serve",
		Aliases: []string{"start"},
		Short:   "Start the inspection server",
		RunE: func(cmd *cobra.Command, args []string) error {
			slog.Info("server config", "env", envconfig.Values())

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			ln, err := net.Listen("tcp", envconfig.Host)
			if err != nil {
				return err
			}

			return server.Serve(ln, cfg)
		},
	}
}

// parseTensorAxes parses name=size arguments into tensor axes, preserving
// argument order.
func parseTensorAxes(args []string) ([]sharding.TensorAxis, error) {
	axes := make([]sharding.TensorAxis, 0, len(args))
	for _, arg := range args {
		name, sizeStr, ok := strings.Cut(arg, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid axis %q, expected name=size", arg)
		}
		size, err := strconv.Atoi(sizeStr)
		if err != nil {
			return nil, fmt.Errorf("invalid axis %q, expected name=size", arg)
		}
		axes = append(axes, sharding.TensorAxis{Name: name, Size: size})
	}
	return axes, nil
}
