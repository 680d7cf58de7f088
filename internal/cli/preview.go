package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/timegrid/pkg/calendar"
	"github.com/matzehuels/timegrid/pkg/grid"
	"github.com/matzehuels/timegrid/pkg/layout"
	"github.com/matzehuels/timegrid/pkg/pipeline"
	"github.com/matzehuels/timegrid/pkg/render/sink"
	"github.com/matzehuels/timegrid/pkg/source"
)

// previewCommand creates the preview command, an interactive terminal
// view of the grid.
func (c *CLI) previewCommand() *cobra.Command {
	var (
		flags   layoutFlags
		events  string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Browse the grid in the terminal",
		Long: `Browse the grid in the terminal.

Keys:
  ←/h →/l   previous / next period
  t         back to today
  d         toggle day and week view
  ↑/k ↓/j   scroll
  q         quit`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := c.openSession(ctx, noCache)
			if err != nil {
				return err
			}
			defer s.Close()

			opts, err := flags.options(s)
			if err != nil {
				return err
			}
			if opts.View == pipeline.ViewPlanner {
				opts.View = pipeline.ViewWeek
			}
			sources, err := s.sources(ctx, events, false)
			if err != nil {
				return err
			}
			defer func() { _ = source.Close(sources) }()

			m := newPreviewModel(ctx, opts.Date, opts.View, sessionLoader(s, sources, opts))
			_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
			return err
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&events, "events", "e", "", "events file, feed URL, or - for stdin (default: config sources)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

// timeNow is replaced in tests.
var timeNow = time.Now

// pageLoader computes the layout of one day or week page.
type pageLoader func(ctx context.Context, date calendar.Date, view string) (layout.Resolved, error)

// sessionLoader loads events for each page from sources and lays them out
// with base's configuration.
func sessionLoader(s *session, sources []source.Named, base pipeline.Options) pageLoader {
	return func(ctx context.Context, date calendar.Date, view string) (layout.Resolved, error) {
		opts := base
		opts.Date, opts.View = date, view
		events, _, err := s.runner.Load(ctx, sources, opts)
		if err != nil {
			return layout.Resolved{}, err
		}
		pages, err := s.runner.Layout(ctx, events, opts)
		if err != nil {
			return layout.Resolved{}, err
		}
		return pages[0].Layout, nil
	}
}

// =============================================================================
// previewModel - bubbletea model
// =============================================================================

// pageMsg delivers a computed page. Pages for a date or view the user has
// already moved away from are dropped.
type pageMsg struct {
	date   calendar.Date
	view   string
	layout layout.Resolved
	err    error
}

type previewModel struct {
	ctx  context.Context
	load pageLoader

	date    calendar.Date
	view    string
	loading bool
	err     error
	grid    sink.TextGrid
	summary string

	offset int // first visible grid row
	height int // terminal rows available for the grid
}

var (
	previewHelpStyle  = lipgloss.NewStyle().Foreground(colorDim)
	previewRuleStyle  = lipgloss.NewStyle().Foreground(colorDim)
	previewTimeStyle  = lipgloss.NewStyle().Foreground(colorGray)
	previewHeadStyle  = lipgloss.NewStyle().Foreground(colorCyan).Bold(true)
	previewErrorStyle = lipgloss.NewStyle().Foreground(colorRed)
)

func newPreviewModel(ctx context.Context, date calendar.Date, view string, load pageLoader) previewModel {
	return previewModel{ctx: ctx, load: load, date: date, view: view, loading: true, height: 40}
}

func (m previewModel) Init() tea.Cmd {
	return m.fetch()
}

func (m previewModel) fetch() tea.Cmd {
	date, view, load, ctx := m.date, m.view, m.load, m.ctx
	return func() tea.Msg {
		l, err := load(ctx, date, view)
		return pageMsg{date: date, view: view, layout: l, err: err}
	}
}

// step is the navigation distance in days.
func (m previewModel) step() int {
	if m.view == pipeline.ViewDay {
		return 1
	}
	return 7
}

func (m previewModel) navigate(date calendar.Date, view string) (tea.Model, tea.Cmd) {
	m.date, m.view = date, view
	m.loading, m.offset = true, 0
	return m, m.fetch()
}

func (m previewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "left", "h":
			return m.navigate(m.date.AddDays(-m.step()), m.view)
		case "right", "l":
			return m.navigate(m.date.AddDays(m.step()), m.view)
		case "t":
			return m.navigate(calendar.DateOf(timeNow()), m.view)
		case "d":
			if m.view == pipeline.ViewDay {
				return m.navigate(m.date, pipeline.ViewWeek)
			}
			return m.navigate(m.date, pipeline.ViewDay)
		case "up", "k":
			if m.offset > 0 {
				m.offset--
			}
		case "down", "j":
			if m.offset < len(m.grid.Rows)-m.height {
				m.offset++
			}
		}
	case tea.WindowSizeMsg:
		m.height = max(msg.Height-4, 5)
	case pageMsg:
		if msg.date != m.date || msg.view != m.view {
			return m, nil
		}
		m.loading, m.err = false, msg.err
		if msg.err == nil {
			m.grid = sink.Grid(msg.layout)
			m.summary = pageSummary(msg.layout)
		}
	}
	return m, nil
}

func (m previewModel) View() string {
	var b strings.Builder

	title := fmt.Sprintf("%s of %s", m.view, m.date)
	if m.view == pipeline.ViewWeek {
		title = fmt.Sprintf("week of %s", grid.WeekStart(m.date))
	}
	b.WriteString(StyleTitle.Render(title))
	if m.summary != "" {
		b.WriteString("  " + StyleDim.Render(m.summary))
	}
	b.WriteString("\n\n")

	switch {
	case m.err != nil:
		b.WriteString(previewErrorStyle.Render("✗ " + m.err.Error()))
		b.WriteString("\n")
	case m.loading && len(m.grid.Rows) == 0:
		b.WriteString(StyleDim.Render("loading..."))
		b.WriteString("\n")
	default:
		end := min(m.offset+m.height, len(m.grid.Rows))
		for _, row := range m.grid.Rows[m.offset:end] {
			b.WriteString(renderRow(row))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(previewHelpStyle.Render("←/→ period  t today  d day/week  ↑/↓ scroll  q quit"))
	return b.String()
}

// renderRow colours a text grid row run by run.
func renderRow(row []sink.TextCell) string {
	var (
		b   strings.Builder
		run []rune
		cur sink.TextCell
	)
	flush := func() {
		if len(run) > 0 {
			b.WriteString(cellStyle(cur).Render(string(run)))
			run = run[:0]
		}
	}
	for _, c := range row {
		if c.Kind != cur.Kind || c.Category != cur.Category {
			flush()
			cur = c
		}
		run = append(run, c.Rune)
	}
	flush()
	return b.String()
}

func cellStyle(c sink.TextCell) lipgloss.Style {
	switch c.Kind {
	case sink.KindRule:
		return previewRuleStyle
	case sink.KindTime, sink.KindFooter:
		return previewTimeStyle
	case sink.KindHeader:
		return previewHeadStyle
	case sink.KindEvent:
		return categoryStyles[c.Category]
	default:
		return lipgloss.NewStyle()
	}
}

// pageSummary counts the placed and unplaced events of a page.
func pageSummary(l layout.Resolved) string {
	s := fmt.Sprintf("%d events", len(l.Events))
	if n := len(l.Excluded); n > 0 {
		s += fmt.Sprintf(" · %d not placed", n)
	}
	return s
}
