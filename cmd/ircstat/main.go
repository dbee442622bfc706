package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"ircstat/internal/di"
	"ircstat/internal/structures"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &structures.CliFlags{}

	root := &cobra.Command{
		Use:           "ircstat",
		Short:         "Compute user and channel statistics from IRC logs",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadEnv(flags.EnvFile)
		},
	}
	root.PersistentFlags().StringVarP(&flags.ConfigPath, "config", "c", "", "path to the yaml config file")
	root.PersistentFlags().BoolVar(&flags.DebugMode, "debug", false, "log at debug level")
	root.PersistentFlags().StringVar(&flags.EnvFile, "env-file", "", "file with IRCSTAT_* variables (default .env if present)")

	root.AddCommand(newRunCmd(flags))
	root.AddCommand(newServeCmd(flags))
	return root
}

// loadEnv exports the variables of a dotenv file without overriding the ones
// already set. A missing default .env is not an error.
func loadEnv(path string) error {
	if path != "" {
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("env file: %w", err)
		}
		return nil
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("env file: %w", err)
	}
	return nil
}

func newRunCmd(flags *structures.CliFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [paths...]",
		Short: "Parse logs, aggregate them and write one report per plugin",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags.Inputs = args

			app, err := di.InitApp(flags)
			if err != nil {
				return err
			}
			defer app.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			summary, err := app.Run(ctx)
			if err != nil {
				return err
			}

			d := summary.Diagnostics
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "conversations: %d, events: %d\n", summary.Conversations, summary.Events)
			fmt.Fprintf(out, "lines: matched %d, unmatched %d, ignored %d, invalid %d\n",
				d.LinesMatched, d.LinesUnmatched, d.LinesIgnored, d.LinesInvalid)
			fmt.Fprintf(out, "plugins: %s (%d failed)\n", strings.Join(summary.Plugins, ", "), summary.Failed)
			for _, f := range summary.Files {
				fmt.Fprintln(out, f)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&flags.OutputDir, "output", "o", "", "directory the reports are written to")
	return cmd
}

func newServeCmd(flags *structures.CliFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve [paths...]",
		Short: "Serve the statistics over a read-only HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && flags.FromDir == "" {
				return fmt.Errorf("serve needs input paths or --from")
			}
			flags.Inputs = args

			app, err := di.InitApp(flags)
			if err != nil {
				return err
			}
			defer app.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return app.Serve(ctx)
		},
	}
	cmd.Flags().StringVarP(&flags.Listen, "listen", "l", "", "HOST:PORT to listen on, overrides webServer")
	cmd.Flags().StringVar(&flags.FromDir, "from", "", "serve the reports of an earlier run from this directory")
	cmd.Flags().DurationVar(&flags.Refresh, "refresh", 0, "rebuild the reports from the input paths on this interval")
	return cmd
}
