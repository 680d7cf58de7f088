package cli

import (
	"cmp"
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/matzehuels/timegrid/pkg/config"
	"github.com/matzehuels/timegrid/pkg/errors"
	"github.com/matzehuels/timegrid/pkg/pipeline"
	"github.com/matzehuels/timegrid/pkg/source"
)

// watchOpts holds the flags of the watch command. Empty fields fall back
// to the [watch] section of the config file.
type watchOpts struct {
	layoutFlags
	schedule string
	output   string
	formats  string
	once     bool
	noCache  bool
}

// watchCommand creates the watch command, which re-exports the configured
// sources on a cron schedule.
func (c *CLI) watchCommand() *cobra.Command {
	var opts watchOpts

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-export the config sources on a schedule",
		Long: `Re-export the config sources on a schedule.

Every tick loads the [[sources]] of the config file for the period around
the current date and overwrites the files in the output directory. Feeds are
refetched once their cache entry expires. The schedule is a standard
five-field cron expression evaluated in the configured time zone; a tick
that starts while the previous export still runs is skipped.`,
		Example: `  timegrid watch --cron "*/15 * * * *" -o ~/planner -f pdf
  timegrid watch --once --view planner -f pdf,epd`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runWatch(cmd.Context(), &opts)
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVar(&opts.schedule, "cron", "", "cron schedule (default from config, else \""+config.DefaultCron+"\")")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output directory (default from config, else .)")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "output format(s) (default from config, else svg)")
	cmd.Flags().BoolVar(&opts.once, "once", false, "export once and exit")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	_ = cmd.RegisterFlagCompletionFunc("format", completeFormats)

	return cmd
}

func (c *CLI) runWatch(ctx context.Context, opts *watchOpts) error {
	s, err := c.openSession(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer s.Close()

	w := s.cfg.Watch
	opts.view = cmp.Or(opts.view, w.View)
	output := cmp.Or(opts.output, w.Output, ".")
	formats := pipeline.ParseFormats(opts.formats)
	if len(formats) == 0 {
		formats = w.Formats
	}
	if err := pipeline.ValidateFormats(formats); err != nil {
		return err
	}

	job := &watchJob{session: s, flags: opts.layoutFlags, output: output, formats: formats, logger: s.logger.WithPrefix("watch")}
	if opts.once {
		return job.run(ctx)
	}

	schedule := cmp.Or(opts.schedule, w.Cron)
	sched, err := newScheduler(schedule, s.loc, job.logger, func() {
		if err := job.run(ctx); err != nil {
			job.logger.Error("export failed", "err", err)
		}
	})
	if err != nil {
		return err
	}

	// First export right away so the output exists before the first tick.
	if err := job.run(ctx); err != nil {
		job.logger.Error("export failed", "err", err)
	}
	sched.Start()
	job.logger.Info("watching", "cron", schedule, "output", output, "next", sched.Entries()[0].Next.Format(time.DateTime))

	<-ctx.Done()
	<-sched.Stop().Done()
	return nil
}

// newScheduler returns a stopped cron scheduler running fn on schedule in
// loc. Overlapping runs are skipped and panics recovered.
func newScheduler(schedule string, loc *time.Location, logger *log.Logger, fn func()) (*cron.Cron, error) {
	if _, err := cron.ParseStandard(schedule); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "cron schedule %q", schedule)
	}
	cl := cronLogger{logger}
	sched := cron.New(
		cron.WithLocation(loc),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	if _, err := sched.AddFunc(schedule, fn); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "cron schedule %q", schedule)
	}
	return sched, nil
}

// watchJob is one scheduled export.
type watchJob struct {
	session *session
	flags   layoutFlags
	output  string
	formats []string
	logger  *log.Logger
}

// run exports the period around today. Dates are resolved per run so a
// long-running watch rolls over to the next day and week.
func (j *watchJob) run(ctx context.Context) error {
	opts, err := j.flags.options(j.session)
	if err != nil {
		return err
	}
	opts.Formats = j.formats

	sources, err := j.session.sources(ctx, "", false)
	if err != nil {
		return err
	}
	defer func() { _ = source.Close(sources) }()

	result, err := j.session.runner.Export(ctx, sources, opts)
	if err != nil {
		return err
	}
	paths, err := writeArtifacts(j.output, result.Artifacts, io.Discard)
	if err != nil {
		return err
	}
	j.logger.Info("exported",
		"date", opts.Date,
		"view", opts.View,
		"files", len(paths),
		"events", result.Stats.EventCount,
		"excluded", result.Excluded(),
		"cached", result.CacheInfo.RenderHits)
	return nil
}

// cronLogger adapts a charm logger to cron.Logger.
type cronLogger struct {
	l *log.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...any) {
	c.l.Debug(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...any) {
	c.l.Error(msg, append(keysAndValues, "err", err)...)
}
