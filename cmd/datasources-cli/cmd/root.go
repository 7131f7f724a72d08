package cmd

import (
	"context"
	"datasources-client/cmd/datasources-cli/globals"
	"datasources-client/cmd/datasources-cli/utils"
	"datasources-client/internal/app"
	"datasources-client/internal/components/telemetry"
	"fmt"
	"log/slog"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/spf13/cobra"
)

var (
	configPath string
	profile    string
	verbose    bool

	opened *globals.Value
)

var rootCmd = &cobra.Command{
	Use:   "datasources-cli",
	Short: "datasources-cli is a command line client for the Data Sources API.",
	Long:  "datasources-cli signs in to the Data Sources API, searches data sources by location and manages followed searches. The session is kept per --profile between invocations.",

	SilenceUsage:  true,
	SilenceErrors: true,

	Run: func(cmd *cobra.Command, args []string) {
		banner := figure.NewFigure("datasources", "cybermedium", true)
		banner.Print()
		fmt.Println()
		cmd.Help()
	},
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd == cmd.Root() {
			return nil
		}
		telemetry.InitSlog(verbose)

		cfg, err := app.LoadConfig(configPath)
		if err != nil {
			return err
		}
		otel, err := telemetry.Setup(cmd.Context(), "datasources-cli", cfg.Telemetry)
		if err != nil {
			return fmt.Errorf("setup telemetry: %w", err)
		}
		slog.Debug("config loaded", "base_url", cfg.Api.BaseUrl, "session", cfg.Session.Backend, "profile", profile)

		instance, err := app.Open(cmd.Context(), cfg, profile, telemetry.SlogAPI{})
		if err != nil {
			return err
		}
		opened = &globals.Value{
			App:       instance,
			Telemetry: otel,
		}
		cmd.SetContext(globals.Set(cmd.Context(), opened))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to the config file (.json5, .json or .yaml).")
	rootCmd.PersistentFlags().StringVarP(&profile, "profile", "p", "default", "Name of the saved session to use.")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging/instrumentation.")
}

// current returns the app opened for the running command.
func current(cmd *cobra.Command) *app.App {
	return globals.Get(cmd.Context()).App
}

// closeOpened releases the app opened by the running command, if any.
func closeOpened() {
	if opened == nil {
		return
	}
	err := opened.App.Close()
	if err != nil {
		slog.Warn("close", "err", err.Error())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err = opened.Telemetry.Shutdown(ctx)
	if err != nil {
		slog.Warn("shutdown telemetry", "err", err.Error())
	}
	opened = nil
}

func Execute() {
	ctx, cancel := utils.SignalContext()
	err := rootCmd.ExecuteContext(ctx)
	closeOpened()
	cancel()
	if err != nil {
		utils.Fatal(rootCmd.Name(), err)
	}
}
