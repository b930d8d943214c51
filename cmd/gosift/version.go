package main

import (
	"fmt"
	"io"
	"runtime"

	"github.com/fatih/color"
	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

// Build information, overridable via -ldflags "-X main.version=...".
var (
	version   = "0.1.0-dev"
	gitCommit = ""
	buildDate = ""
)

var versionFormat string

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		switch versionFormat {
		case "pretty":
			renderVersionPretty(cmd.OutOrStdout())
			return nil
		case "json":
			return renderVersionJSON(cmd.OutOrStdout())
		}
		return fmt.Errorf("unsupported format %q (must be pretty or json)", versionFormat)
	},
}

func init() {
	versionCmd.Flags().StringVar(&versionFormat, "format", "pretty", "output format (pretty|json)")
}

type versionPayload struct {
	Tool      string `json:"tool"`
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
}

func renderVersionPretty(out io.Writer) {
	bold := color.New(color.FgGreen, color.Bold)
	fmt.Fprintf(out, "gosift %s (%s)\n", bold.Sprint(version), runtime.Version())
	fmt.Fprintf(out, "commit: %s\n", valueOrUnknown(gitCommit))
	fmt.Fprintf(out, "built:  %s\n", valueOrUnknown(buildDate))
}

func renderVersionJSON(out io.Writer) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(versionPayload{
		Tool:      "gosift",
		Version:   version,
		GitCommit: valueOrUnknown(gitCommit),
		BuildDate: valueOrUnknown(buildDate),
		GoVersion: runtime.Version(),
	})
}

func valueOrUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
