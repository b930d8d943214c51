package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/reoring/gosift"
	"github.com/reoring/gosift/schemadoc"
	"github.com/reoring/gosift/source"
)

var (
	validateOutput string
	validateJobs   int
	validateFormat string
)

var validateCmd = &cobra.Command{
	Use:   "validate <schema> <file>...",
	Short: "Validate data files against a schema document",
	Long: `Validate compiles the schema document and parses every file with it.
The data format is taken from the file extension unless --format is set.
A file named "-" is read from standard input and requires --format.

The command exits with status 1 when any file fails.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		output := cfg.Output
		if cmd.Flags().Changed("output") {
			output = validateOutput
		}
		jobs := cfg.Jobs
		if cmd.Flags().Changed("jobs") {
			jobs = validateJobs
		}
		var forced source.Format
		if validateFormat != "" {
			f, err := source.ParseFormat(validateFormat)
			if err != nil {
				return err
			}
			forced = f
		}

		doc, err := schemadoc.Load(args[0])
		if err != nil {
			return err
		}
		results := validateFiles(cmd.Context(), doc.Root, args[1:], forced, jobs, cmd.InOrStdin())

		switch output {
		case "pretty":
			renderPretty(cmd.OutOrStdout(), results)
		case "json":
			if err := renderJSON(cmd.OutOrStdout(), results); err != nil {
				return err
			}
		default:
			return fmt.Errorf("unsupported output %q (must be pretty or json)", output)
		}
		for _, r := range results {
			if !r.Valid {
				return errInvalid
			}
		}
		return nil
	},
}

func init() {
	validateCmd.Flags().StringVarP(&validateOutput, "output", "o", "pretty", "output format (pretty|json)")
	validateCmd.Flags().IntVarP(&validateJobs, "jobs", "j", 0, "number of files validated concurrently (default from config)")
	validateCmd.Flags().StringVar(&validateFormat, "format", "", "data format for every file (json|yaml|toml|msgpack)")
}

// fileResult is the outcome for one input. Error is set when the file could
// not be read or the schema failed with a non-data error.
type fileResult struct {
	File   string        `json:"file"`
	Valid  bool          `json:"valid"`
	Issues gosift.Issues `json:"issues,omitempty"`
	Error  string        `json:"error,omitempty"`
}

// validateFiles parses files concurrently and returns results in argument
// order.
func validateFiles(ctx context.Context, n gosift.Node, files []string, forced source.Format, jobs int, stdin io.Reader) []fileResult {
	results := make([]fileResult, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, min(jobs, len(files))))
	for i, file := range files {
		g.Go(func() error {
			results[i] = validateFile(gctx, n, file, forced, stdin)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func validateFile(ctx context.Context, n gosift.Node, file string, forced source.Format, stdin io.Reader) fileResult {
	res := fileResult{File: file}
	f := forced
	if f == "" {
		var ok bool
		if f, ok = source.FormatFromPath(file); !ok {
			res.Error = fmt.Sprintf("cannot detect format (use --format): %v", source.ErrUnknownFormat)
			return res
		}
	}
	var src gosift.Source
	if file == "-" {
		src = gosift.ReaderOf(f, stdin, 0)
	} else {
		data, err := os.ReadFile(file)
		if err != nil {
			res.Error = err.Error()
			return res
		}
		src = gosift.BytesOf(f, data)
	}
	_, err := gosift.ParseNodeFrom(ctx, n, src, gosift.Async)
	if err == nil {
		res.Valid = true
		return res
	}
	if iss, ok := gosift.AsIssues(err); ok {
		res.Issues = iss
		return res
	}
	res.Error = err.Error()
	return res
}

var (
	okColor    = color.New(color.FgGreen, color.Bold)
	failColor  = color.New(color.FgRed, color.Bold)
	pathColor  = color.New(color.FgCyan)
	codeColor  = color.New(color.FgYellow)
	faintColor = color.New(color.Faint)
)

func renderPretty(out io.Writer, results []fileResult) {
	failed := 0
	for _, r := range results {
		switch {
		case r.Valid:
			fmt.Fprintf(out, "%s %s\n", okColor.Sprint("ok"), r.File)
			continue
		case r.Error != "":
			fmt.Fprintf(out, "%s %s: %s\n", failColor.Sprint("error"), r.File, r.Error)
		default:
			fmt.Fprintf(out, "%s %s\n", failColor.Sprint("fail"), r.File)
			for _, it := range r.Issues {
				fmt.Fprintf(out, "    %s %s %s\n", pathColor.Sprint(it.Path.Pointer()), codeColor.Sprint(it.Code), it.Message)
			}
		}
		failed++
	}
	fmt.Fprintln(out, faintColor.Sprintf("%d file(s) checked, %d failed", len(results), failed))
}

func renderJSON(out io.Writer, results []fileResult) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}
