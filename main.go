package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	gaba "github.com/BrandonKowalski/gabagool/v2/pkg/gabagool"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Helaas/nextui-moflex-pak/internal/config"
	"github.com/Helaas/nextui-moflex-pak/internal/logging"
)

// Platform represents the target device.
type Platform string

const (
	PlatformMac    Platform = "mac"
	PlatformTG5040 Platform = "tg5040"
	PlatformTG5050 Platform = "tg5050"
)

var platform Platform

func main() {
	platform = detectPlatform(os.Getenv("PLATFORM"))

	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func detectPlatform(env string) Platform {
	env = strings.ToUpper(env)
	switch {
	case strings.Contains(env, "TG5050"):
		return PlatformTG5050
	case strings.Contains(env, "TG5040"), strings.Contains(env, "TG3040"):
		return PlatformTG5040
	case strings.Contains(env, "MAC"):
		return PlatformMac
	default:
		return PlatformTG5040
	}
}

func newRootCommand() *cobra.Command {
	var configFlag string

	rootCmd := &cobra.Command{
		Use:           "moflex",
		Short:         "Browse movie collections and hand them to the movie player",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(configFlag, false, func(a *app) error {
				return a.runPak(cmd.Context())
			})
		},
	}
	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "restore",
		Short: "Move displaced movie files back to their collection folder",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(configFlag, true, func(a *app) error {
				return a.runRestore(cmd.OutOrStdout())
			})
		},
	})
	rootCmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show the relocation state and device paths",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(configFlag, true, func(a *app) error {
				fmt.Fprintln(cmd.OutOrStdout(), a.renderStatus())
				return nil
			})
		},
	})
	return rootCmd
}

// withApp loads config, builds the logger and the app, and runs fn.
func withApp(configFlag string, headless bool, fn func(*app) error) error {
	sdcard := getSDCardPath()
	configPath := configFlag
	if configPath == "" {
		configPath = config.DefaultPath(sdcard, string(platform))
	}
	cfg, exists, err := config.Load(configPath, string(platform), sdcard)
	if err != nil {
		return err
	}

	logger, err := logging.New(logging.Config{
		Level:    cfg.Logging.Level,
		FilePath: getLogPath(cfg.Paths.SDCard),
		Stderr:   headless,
	})
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("startup",
		zap.String("platform", string(platform)),
		zap.String("config", configPath),
		zap.Bool("config_exists", exists),
		zap.String("sdcard", cfg.Paths.SDCard),
	)
	return fn(newApp(cfg, logger))
}

// isErrCancelled checks if the error is a Gabagool user-cancelled error.
func isErrCancelled(err error) bool {
	return errors.Is(err, gaba.ErrCancelled)
}
