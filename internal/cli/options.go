package cli

import (
	"cmp"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/timegrid/pkg/calendar"
	"github.com/matzehuels/timegrid/pkg/errors"
	"github.com/matzehuels/timegrid/pkg/layout"
	"github.com/matzehuels/timegrid/pkg/pipeline"
)

// unset marks an integer flag the user did not pass.
const unset = -1

// layoutFlags are the flags shared by every command that computes a layout.
type layoutFlags struct {
	date      string
	view      string
	target    string
	title     string
	startHour int
	endHour   int
	scale     float64
}

func (f *layoutFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.date, "date", "d", "", "any date in the period to show, YYYY-MM-DD or today (default: today)")
	cmd.Flags().StringVar(&f.view, "view", "", "view: day, week (default), planner")
	cmd.Flags().StringVarP(&f.target, "target", "t", "", "page preset (see 'timegrid presets'; default from config)")
	cmd.Flags().StringVar(&f.title, "title", "", "document title")
	cmd.Flags().IntVar(&f.startHour, "start-hour", unset, "first visible hour (default from config, else 6)")
	cmd.Flags().IntVar(&f.endHour, "end-hour", unset, "last visible hour (default from config, else 23)")
	cmd.Flags().Float64Var(&f.scale, "scale", 0, "fixed scale factor instead of fitting the page")
	registerLayoutCompletions(cmd)
}

// options merges the flags over the session's config file.
func (f *layoutFlags) options(s *session) (pipeline.Options, error) {
	date, err := parseDate(f.date, s.loc)
	if err != nil {
		return pipeline.Options{}, err
	}

	cfg := *s.cfg
	cfg.Target = cmp.Or(f.target, cfg.Target)
	if f.startHour != unset {
		cfg.StartHour = &f.startHour
	}
	if f.endHour != unset {
		cfg.EndHour = &f.endHour
	}
	lc, err := cfg.Layout()
	if err != nil {
		return pipeline.Options{}, err
	}
	if lc, err = withScale(lc, f.scale); err != nil {
		return pipeline.Options{}, err
	}

	return pipeline.Options{
		Date:   date,
		View:   cmp.Or(f.view, pipeline.DefaultView),
		Target: cfg.Target,
		Title:  f.title,
		Layout: lc,
		Logger: s.logger,
	}, nil
}

// withScale applies a fixed scale factor. Zero keeps page fitting.
func withScale(lc layout.Config, scale float64) (layout.Config, error) {
	if scale < 0 {
		return lc, errors.New(errors.ErrCodeInvalidInput, "scale must be positive, got %g", scale)
	}
	lc.ScaleOverride = scale
	return lc, nil
}

// parseDate accepts YYYY-MM-DD, "today", "tomorrow" and "yesterday". The
// empty string is today in loc.
func parseDate(s string, loc *time.Location) (calendar.Date, error) {
	today := calendar.DateOf(time.Now().In(loc))
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "today":
		return today, nil
	case "tomorrow":
		return today.AddDays(1), nil
	case "yesterday":
		return today.AddDays(-1), nil
	}
	d, err := calendar.ParseDate(s)
	if err != nil {
		return calendar.Date{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid --date %q (want YYYY-MM-DD)", s)
	}
	return d, nil
}
