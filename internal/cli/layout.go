package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/timegrid/pkg/pipeline"
	"github.com/matzehuels/timegrid/pkg/source"
)

// layoutCommand creates the layout command, which writes the resolved
// layout as JSON without drawing it.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		flags   layoutFlags
		events  string
		output  string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Compute the page layout and write it as JSON",
		Long: `Compute the page layout and write it as JSON.

The document holds every page of the view with absolute geometry in page
units: header cells, slot rows, grid lines, time labels, event blocks with
their lanes and fitted labels, the events that could not be placed, and
per-day free time. It is the same document 'export -f json' writes, meant for
drawing the grid in another program.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), &flags, events, output, noCache)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&events, "events", "e", "", "events file, feed URL, or - for stdin (default: config sources)")
	cmd.Flags().StringVarP(&output, "output", "o", "-", "output file (default: stdout)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runLayout(ctx context.Context, flags *layoutFlags, events, output string, noCache bool) error {
	s, err := c.openSession(ctx, noCache)
	if err != nil {
		return err
	}
	defer s.Close()

	opts, err := flags.options(s)
	if err != nil {
		return err
	}
	opts.Formats = []string{pipeline.FormatJSON}

	sources, err := s.sources(ctx, events, false)
	if err != nil {
		return err
	}
	defer func() { _ = source.Close(sources) }()

	prog := newProgress(s.logger)
	result, err := s.runner.Export(ctx, sources, opts)
	if err != nil {
		return err
	}
	prog.done("layout ready", "pages", len(result.Pages), "excluded", result.Excluded())

	written, err := writeArtifacts(output, result.Artifacts, os.Stdout)
	if err != nil {
		return err
	}
	for _, path := range written {
		printFile(path)
	}
	if n := result.Excluded(); n > 0 {
		s.logger.Warn("events could not be placed", "count", n)
	}
	return nil
}
