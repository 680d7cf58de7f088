package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/timegrid/pkg/config"
	"github.com/matzehuels/timegrid/pkg/errors"
	"github.com/matzehuels/timegrid/pkg/pipeline"
	"github.com/matzehuels/timegrid/pkg/source"
)

// exportOpts holds the command-line flags for the export command.
type exportOpts struct {
	layoutFlags
	events  string // json/ics path, URL, or "-" for stdin
	output  string // directory, file path (single artifact), or "-" for stdout
	formats string // comma-separated formats
	noCache bool
	refresh bool // bypass feed and artifact caches
}

// exportCommand creates the export command, the main entry point: load
// events, lay them out, write every requested format.
func (c *CLI) exportCommand() *cobra.Command {
	var opts exportOpts

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Render calendar events to day or week pages",
		Long: `Render calendar events to day or week pages.

Events come from --events (a JSON export, an .ics file, an https:// feed, or
"-" for JSON on stdin) or from the [[sources]] of the config file. The view
decides the pages: "day" and "week" produce one page, "planner" a week
overview followed by seven day pages. PDF and JSON bundle every page into one
file; the other formats write one file per page.

Events that cannot be placed (outside the visible hours or days) are listed
after the export.`,
		Example: `  timegrid export --events appointments.json --date 2025-07-14
  timegrid export --view planner --target remarkable-paper-pro -f pdf -o ~/planner
  timegrid export --events https://example.com/basic.ics -f png,text`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runExport(cmd.Context(), &opts)
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVarP(&opts.events, "events", "e", "", "events file, feed URL, or - for stdin (default: config sources)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", ".", "output directory, or file when a single file is written (- for stdout)")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "svg", "output format(s): svg, png, pdf, epd, json, text (comma-separated)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "refetch feeds and re-render even when cached")
	_ = cmd.RegisterFlagCompletionFunc("format", completeFormats)

	return cmd
}

func (c *CLI) runExport(ctx context.Context, opts *exportOpts) error {
	formats := pipeline.ParseFormats(opts.formats)
	if err := pipeline.ValidateFormats(formats); err != nil {
		return err
	}

	s, err := c.openSession(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer s.Close()

	po, err := opts.options(s)
	if err != nil {
		return err
	}
	po.Formats = formats
	po.Refresh = opts.refresh

	sources, err := s.sources(ctx, opts.events, opts.refresh)
	if err != nil {
		return err
	}
	defer func() { _ = source.Close(sources) }()

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Exporting %s %s...", po.View, po.Date))
	spinner.Start()
	result, err := s.runner.Export(ctx, sources, po)
	if err != nil {
		spinner.StopWithError("Export failed")
		return err
	}
	spinner.Update(fmt.Sprintf("Writing %d files...", len(result.Artifacts)))
	written, err := writeArtifacts(opts.output, result.Artifacts, os.Stdout)
	if err != nil {
		spinner.StopWithError("Write failed")
		return err
	}
	spinner.Stop()
	if opts.output == "-" {
		return nil
	}

	printSuccess("Exported %s", strings.Join(formats, ", "))
	for _, path := range written {
		printFile(path)
	}
	printStats(result)
	printExcluded(result, s.loc)
	return nil
}

// writeArtifacts writes artifacts under output and returns the paths
// written. output is a directory, created if needed, unless it names a
// file with an extension and there is exactly one artifact. "-" writes a
// single artifact to stdout.
func writeArtifacts(output string, artifacts []pipeline.Artifact, stdout io.Writer) ([]string, error) {
	if output == "-" {
		if len(artifacts) != 1 {
			return nil, errors.New(errors.ErrCodeInvalidPath, "cannot write %d files to stdout; pass -o <dir>", len(artifacts))
		}
		_, err := stdout.Write(artifacts[0].Data)
		return nil, err
	}

	output = config.ExpandHome(output)
	if len(artifacts) == 1 && filepath.Ext(output) != "" && !isDir(output) {
		if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
			return nil, errors.Wrap(errors.ErrCodeStorage, err, "create %s", filepath.Dir(output))
		}
		if err := os.WriteFile(output, artifacts[0].Data, 0o644); err != nil {
			return nil, errors.Wrap(errors.ErrCodeStorage, err, "write %s", output)
		}
		return []string{output}, nil
	}

	if err := os.MkdirAll(output, 0o755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "create output directory %s", output)
	}
	paths := make([]string, 0, len(artifacts))
	for _, a := range artifacts {
		path := filepath.Join(output, a.Name)
		if err := os.WriteFile(path, a.Data, 0o644); err != nil {
			return paths, errors.Wrap(errors.ErrCodeStorage, err, "write %s", path)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
