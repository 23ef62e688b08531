package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"provtrack/internal/config"
	"provtrack/internal/loader"
	"provtrack/internal/provenance"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	rootCmd = &cobra.Command{
		Use:   "provtrack",
		Short: "Provenance tracking across compiler pipeline artifacts",
	}
	configPath string
	outDir     string
)

var (
	okColor   = color.New(color.FgGreen)
	warnColor = color.New(color.FgYellow)
	errColor  = color.New(color.FgRed, color.Bold)
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		errColor.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "provtrack.yaml", "Path to the YAML config file")
	rootCmd.PersistentFlags().StringVarP(&outDir, "out", "o", "", "Output directory for rendered reports (overrides config)")

	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(showCmd)
}

// app bundles what every command needs after configuration is loaded.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	loader *loader.Loader
}

func newApp() (*app, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if outDir != "" {
		cfg.Output.Dir = outDir
	}
	prefer, err := cfg.PreferredVariant()
	if err != nil {
		return nil, err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	return &app{
		cfg:    cfg,
		logger: logger,
		loader: loader.New(cfg.Files, prefer, logger),
	}, nil
}

// build loads one compile directory and builds its provenance context. A
// non-empty name replaces the directory's base name.
func (a *app) build(ctx context.Context, dir, name string) (*provenance.Context, error) {
	in, err := a.loader.Load(ctx, dir)
	if err != nil {
		return nil, err
	}
	if name != "" {
		in.Name = name
	}
	return provenance.Build(in, provenance.Options{
		Markers: a.cfg.IndexMarkers(),
		Logger:  a.logger,
	}), nil
}
