package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tordrt/migrationgen"
	"github.com/tordrt/migrationgen/internal/config"
)

func newRootCmd() *cobra.Command {
	var configFile string

	rootCmd := &cobra.Command{
		Use:           "migrationgen",
		Short:         "Generate TypeORM migrations from a MySQL schema",
		Long:          `migrationgen inspects the tables, columns and indexes of a live MySQL or MariaDB schema and writes one TypeORM migration per table that recreates it.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "Config file (default: .migrationgen.yaml in the working or home directory)")
	flags.String(config.KeyUsername, "root", "Username to authenticate for database connection")
	flags.String(config.KeyPassword, "", "Password to authenticate for database connection")
	flags.String(config.KeyHost, "127.0.0.1", "Host of the database connection")
	flags.Int(config.KeyPort, 3306, "Port of the database connection")
	flags.String(config.KeyDatabase, "", "Database name")
	flags.String(config.KeyOutputDirectory, ".", "Your migrations directory")
	flags.BoolP(config.KeyVerbose, "v", false, "Log progress details")

	loadOptions := func(cmd *cobra.Command) (*migrationgen.Options, error) {
		cfg, err := config.Load(viper.New(), cmd.Flags(), configFile)
		if err != nil {
			return nil, err
		}
		return &migrationgen.Options{
			Username:  cfg.Username,
			Password:  cfg.Password,
			Host:      cfg.Host,
			Port:      cfg.Port,
			Database:  cfg.Database,
			OutputDir: cfg.OutputDirectory,
			Logger:    newLogger(cmd.ErrOrStderr(), cfg.Verbose),
		}, nil
	}

	rootCmd.AddCommand(newAllCmd(loadOptions), newChildCmd(loadOptions))
	return rootCmd
}

type optionsLoader func(cmd *cobra.Command) (*migrationgen.Options, error)

func newAllCmd(load optionsLoader) *cobra.Command {
	var exclude string

	cmd := &cobra.Command{
		Use:   "all",
		Short: "Generates migrations for all tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := load(cmd)
			if err != nil {
				return err
			}
			opts.ExcludeTables = parseTableList(exclude)

			paths, err := migrationgen.GenerateAll(cmd.Context(), opts)
			for _, path := range paths {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), path)
			}
			return err
		},
	}

	cmd.Flags().StringVarP(&exclude, "exclude", "x", "", "Tables to skip (comma-separated, optional)")
	return cmd
}

func newChildCmd(load optionsLoader) *cobra.Command {
	var childType, childName string

	cmd := &cobra.Command{
		Use:   "child",
		Short: "Generates migrations for a specific child",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := load(cmd)
			if err != nil {
				return err
			}

			path, err := migrationgen.GenerateChild(cmd.Context(), childType, childName, opts)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}

	cmd.Flags().StringVar(&childType, "child-type", migrationgen.KindTable, `Child type. default is "table"`)
	cmd.Flags().StringVar(&childName, "child-name", "", "Name of the child")
	_ = cmd.MarkFlagRequired("child-name")
	return cmd
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// parseTableList splits a comma-separated table list
func parseTableList(tables string) []string {
	if tables == "" {
		return nil
	}

	tableList := strings.Split(tables, ",")
	for i, t := range tableList {
		tableList[i] = strings.TrimSpace(t)
	}
	return tableList
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := newRootCmd().ExecuteContext(ctx)
	cancel()

	if err != nil {
		_, _ = color.New(color.FgRed).Fprintf(os.Stderr, "Error occurred: %v\n", err)
		os.Exit(1)
	}
}
