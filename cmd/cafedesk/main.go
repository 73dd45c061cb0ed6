// Package main provides the cafedesk binary entry point.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cafedesk/cafedesk/config"
	"github.com/cafedesk/cafedesk/internal/app"
)

const (
	Version = "1.0.0"
	appName = "cafedesk"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Cafe management backend",
		Long: `cafedesk serves the cafe HTTP API: menu, orders and payments,
tables and reservations, inventory, staff, promotions and reports.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(configPath)
		},
	}
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path (YAML)")

	cmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server and background jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(configPath)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "initdb",
		Short: "Empty every collection, then reseed the demo data if enabled",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(configPath, func(a *app.Application) error {
				return a.InitDb()
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "rollup",
		Short: "Rebuild the customers and revenue collections once",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(configPath, func(a *app.Application) error {
				a.RunRollups()
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s version %s\n", appName, Version)
		},
	})

	return cmd
}

func withApp(configPath string, fn func(a *app.Application) error) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return err
	}
	app.InitLogger(cfg)
	a := app.NewApplication(cfg)
	defer a.Release()
	if err := a.Init(); err != nil {
		return err
	}
	return fn(a)
}

func serve(configPath string) error {
	return withApp(configPath, func(a *app.Application) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		zap.L().Info("cafedesk starting",
			zap.String("version", Version),
			zap.String("backend", a.Config().Storage.Backend),
			zap.String("addr", a.Config().ListenAddr()))
		return a.Run(ctx)
	})
}
