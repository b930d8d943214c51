package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/reoring/gosift/i18n"
	"github.com/reoring/gosift/internal/config"
)

// errInvalid reports that at least one input failed validation. The issues
// are already printed, so main only sets the exit status.
var errInvalid = errors.New("validation failed")

// cfg is the effective configuration, resolved before any subcommand runs.
var cfg = config.Default()

var rootCmd = &cobra.Command{
	Use:   "gosift",
	Short: "Validate data against schema documents",
	Long: `gosift compiles schema documents (YAML, JSON, TOML or MessagePack) and
validates data files or HTTP request bodies against them.

Settings are read from the nearest gosift.toml unless --config is given.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.Version = version
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("config", "", "path to gosift.toml (default: nearest one upwards)")
	rootCmd.PersistentFlags().String("lang", "", "message language as a BCP 47 tag (en, ja)")
	rootCmd.PersistentFlags().String("color", "", "colorize output (auto|always|never)")
}

// setup loads the configuration, applies flag overrides and installs the
// message language and color mode.
func setup(cmd *cobra.Command, _ []string) error {
	path, _ := cmd.Flags().GetString("config")
	var err error
	if path != "" {
		cfg, err = config.Load(path)
	} else {
		cfg, err = config.Discover(".")
	}
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("lang") {
		cfg.Language, _ = cmd.Flags().GetString("lang")
	}
	if cmd.Flags().Changed("color") {
		cfg.Color, _ = cmd.Flags().GetString("color")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	i18n.SetLanguage(cfg.Language)
	switch cfg.Color {
	case config.ColorAlways:
		color.NoColor = false
	case config.ColorNever:
		color.NoColor = true
	}
	return nil
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		if !errors.Is(err, errInvalid) {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}
}
