package layout

import (
	"fmt"
	"slices"
	"time"

	"github.com/matzehuels/timegrid/pkg/calendar"
	"github.com/matzehuels/timegrid/pkg/grid"
)

// Reference sizes, scaled like every other length.
const (
	minorLineWidth = 0.5
	majorLineWidth = 1.0
	blockPadding   = 2.0
	labelInset     = 3.0
	lineSpacing    = 1.2
)

// Placement is a lane-resolved position together with the event it places
// and the event's category.
type Placement struct {
	grid.Position
	Event    calendar.Event
	Category calendar.Category
}

// ComposeOption configures [Compose].
type ComposeOption func(*composer)

// WithDayNotes attaches short notes (typically all-day event titles) to
// header cells, keyed by day index.
func WithDayNotes(notes map[int][]string) ComposeOption {
	return func(c *composer) { c.notes = notes }
}

// WithNavigation adds planner links: weekly day headers lead to their day
// pages, and daily pages lead back to the week and to the neighbouring
// days of the same week.
func WithNavigation() ComposeOption {
	return func(c *composer) { c.nav = true }
}

type composer struct {
	cfg   Config
	scale Scale
	notes map[int][]string
	nav   bool

	fonts   Fonts
	timeW   float64
	colW    float64
	rowH    float64
	headerH float64
	left    float64
	top     float64
	gridTop float64
	dayLeft float64
}

// Compose resolves absolute geometry for one page. It performs no
// validation; pass a Config that has passed [Config.Validate] and
// positions from [grid.ResolveLanes].
func Compose(slots []grid.Slot, days []grid.Day, placements []Placement, cfg Config, scale Scale, opts ...ComposeOption) Resolved {
	c := &composer{cfg: cfg, scale: scale}
	for _, opt := range opts {
		opt(c)
	}

	c.fonts = Fonts{
		Header: scale.Font(cfg.HeaderFontSize, cfg.MinFontSize),
		Time:   scale.Font(cfg.TimeFontSize, cfg.MinFontSize),
		Event:  scale.Font(cfg.EventFontSize, cfg.MinFontSize),
	}
	c.timeW = scale.Of(cfg.TimeColumnWidth)
	c.colW = scale.Of(cfg.ColumnWidth(len(days)))
	c.rowH = scale.Of(cfg.RowHeight)
	c.headerH = scale.Of(cfg.HeaderHeight)
	c.left = cfg.Margin
	c.top = cfg.Margin
	c.gridTop = c.top + c.headerH
	c.dayLeft = c.left + c.timeW

	stats := computeStats(days, slots, placements)
	l := Resolved{
		Page:  Page{Width: cfg.PageWidth, Height: cfg.PageHeight, Margin: cfg.Margin},
		Scale: scale,
		Fonts: c.fonts,
		Grid: Rect{
			X: c.left,
			Y: c.gridTop,
			W: c.timeW + float64(len(days))*c.colW,
			H: float64(len(slots)) * c.rowH,
		},
		Days:       slices.Clone(days),
		Slots:      slices.Clone(slots),
		Header:     c.header(days),
		Rows:       c.rows(slots, len(days)),
		Lines:      c.lines(slots, len(days)),
		TimeLabels: c.timeLabels(slots),
		Events:     c.blocks(placements),
		Stats:      stats,
	}
	if len(days) == grid.DailyView {
		l.Summary = c.summary(l.Header[1], stats[0])
	}
	if c.nav {
		l.Links = c.links(l.Header)
	}
	return l
}

func (c *composer) header(days []grid.Day) []Cell {
	cells := make([]Cell, 0, len(days)+1)
	cells = append(cells, Cell{
		Rect:     Rect{X: c.left, Y: c.top, W: c.timeW, H: c.headerH},
		DayIndex: -1,
		Fill:     White,
		Border:   Navy,
		Stroke:   c.scale.Of(majorLineWidth),
	})

	for _, d := range days {
		r := Rect{X: c.dayLeft + float64(d.Index)*c.colW, Y: c.top, W: c.colW, H: c.headerH}
		cell := Cell{Rect: r, DayIndex: d.Index, Date: d.Date, Fill: LightGrey, Border: Navy, Stroke: c.scale.Of(majorLineWidth)}

		label := dayLabel(d, len(days))
		notes := c.notes[d.Index]
		rows := headerRows(len(days) == grid.DailyView, len(notes) > 0)
		textW := c.headerTextWidth(r, len(days))
		cell.Labels = append(cell.Labels, Text{
			X:      r.CenterX(),
			Y:      centeredBaseline(r.Y+r.H*rows.label, c.fonts.Header),
			Value:  FitLabel(label, textW, c.fonts.Header),
			Size:   c.fonts.Header,
			Anchor: AnchorMiddle,
			Bold:   true,
			Color:  Navy,
		})

		if len(notes) > 0 {
			note := notes[0]
			if len(notes) > 1 {
				note = fmt.Sprintf("%s +%d", note, len(notes)-1)
			}
			cell.Labels = append(cell.Labels, Text{
				X:      r.CenterX(),
				Y:      centeredBaseline(r.Y+r.H*rows.note, c.fonts.Event),
				Value:  FitLabel(note, textW, c.fonts.Event),
				Size:   c.fonts.Event,
				Anchor: AnchorMiddle,
				Color:  Navy,
			})
		}
		cells = append(cells, cell)
	}
	return cells
}

// headerLines holds the vertical centres of the header text lines as
// fractions of the header height.
type headerLines struct {
	label, summary, note float64
}

func headerRows(daily, notes bool) headerLines {
	switch {
	case daily && notes:
		return headerLines{label: 0.25, summary: 0.55, note: 0.82}
	case daily:
		return headerLines{label: 0.33, summary: 0.7}
	case notes:
		return headerLines{label: 0.35, note: 0.75}
	}
	return headerLines{label: 0.5}
}

// headerTextWidth is the width centred header text may use. Daily pages
// with navigation keep the outer fifths free for the previous and next
// day links.
func (c *composer) headerTextWidth(r Rect, dayCount int) float64 {
	if c.nav && dayCount == grid.DailyView {
		return r.W * (1 - 2*navFraction)
	}
	return r.W
}

// navFraction is the share of a daily header taken by each day link.
const navFraction = 0.2

// summary is the stats line under a daily header label.
func (c *composer) summary(cell Cell, st DayStats) Text {
	rows := headerRows(true, len(c.notes[cell.DayIndex]) > 0)
	return Text{
		X:      cell.CenterX(),
		Y:      centeredBaseline(cell.Y+cell.H*rows.summary, c.fonts.Event),
		Value:  FitLabel(st.Summary(), c.headerTextWidth(cell.Rect, grid.DailyView), c.fonts.Event),
		Size:   c.fonts.Event,
		Anchor: AnchorMiddle,
		Color:  Navy,
	}
}

// links builds the planner navigation. Weekly pages link every day header;
// daily pages link the corner cell to the week and carry previous and next
// day links inside the day header.
func (c *composer) links(header []Cell) []Link {
	days := header[1:]
	if len(days) != grid.DailyView {
		links := make([]Link, len(days))
		for i, cell := range days {
			links[i] = Link{Rect: cell.Rect, Kind: LinkDay, Date: cell.Date}
		}
		return links
	}

	corner, day := header[0], days[0]
	font := c.fonts.Time
	inset := c.scale.Of(labelInset)
	rows := headerRows(true, len(c.notes[day.DayIndex]) > 0)
	baseline := centeredBaseline(day.Y+day.H*rows.label, font)

	links := []Link{{
		Rect: corner.Rect,
		Kind: LinkWeek,
		Date: grid.WeekStart(day.Date),
		Label: Text{
			X: corner.CenterX(), Y: centeredBaseline(corner.CenterY(), font),
			Value: FitLabel("Week", corner.W, font),
			Size:  font, Anchor: AnchorMiddle, Bold: true, Color: Navy,
		},
	}}

	navW := day.W * navFraction
	if day.Date.Weekday() != time.Monday {
		prev := day.Date.AddDays(-1)
		links = append(links, Link{
			Rect: Rect{X: day.X, Y: day.Y, W: navW, H: day.H},
			Kind: LinkDay,
			Date: prev,
			Label: Text{
				X: day.X + inset, Y: baseline,
				Value: FitLabel("< "+prev.In(nil).Format("Mon"), navW-inset, font),
				Size:  font, Anchor: AnchorStart, Color: Navy,
			},
		})
	}
	if day.Date.Weekday() != time.Sunday {
		next := day.Date.AddDays(1)
		links = append(links, Link{
			Rect: Rect{X: day.Right() - navW, Y: day.Y, W: navW, H: day.H},
			Kind: LinkDay,
			Date: next,
			Label: Text{
				X: day.Right() - inset, Y: baseline,
				Value: FitLabel(next.In(nil).Format("Mon")+" >", navW-inset, font),
				Size:  font, Anchor: AnchorEnd, Color: Navy,
			},
		})
	}
	return links
}

func dayLabel(d grid.Day, dayCount int) string {
	t := d.Date.In(nil)
	if dayCount == grid.DailyView {
		return t.Format("Monday, January 2, 2006")
	}
	return t.Format("Mon 1/2")
}

func (c *composer) rows(slots []grid.Slot, dayCount int) []Row {
	w := c.timeW + float64(dayCount)*c.colW
	rows := make([]Row, len(slots))
	for i, s := range slots {
		fill := White
		if s.Hour%2 == 1 {
			fill = HourShade
		}
		rows[i] = Row{
			Rect: Rect{X: c.left, Y: c.gridTop + float64(i)*c.rowH, W: w, H: c.rowH},
			Slot: s.Index,
			Fill: fill,
		}
	}
	return rows
}

func (c *composer) lines(slots []grid.Slot, dayCount int) []Line {
	n := len(slots)
	right := c.dayLeft + float64(dayCount)*c.colW
	bottom := c.gridTop + float64(n)*c.rowH
	minor := c.scale.Of(minorLineWidth)
	major := c.scale.Of(majorLineWidth)

	lines := make([]Line, 0, n+1+dayCount+2)
	for i := 0; i <= n; i++ {
		y := c.gridTop + float64(i)*c.rowH
		isMajor := i == 0 || i == n || slots[i].HourBoundary
		ln := Line{X1: c.left, Y1: y, X2: right, Y2: y, Width: minor, Color: CoolGrey, Major: isMajor}
		if isMajor {
			ln.Width = major
		}
		lines = append(lines, ln)
	}

	xs := []float64{c.left, c.dayLeft}
	for j := 1; j <= dayCount; j++ {
		xs = append(xs, c.dayLeft+float64(j)*c.colW)
	}
	for _, x := range xs {
		lines = append(lines, Line{X1: x, Y1: c.top, X2: x, Y2: bottom, Width: major, Color: Navy, Major: true, Vertical: true})
	}
	return lines
}

func (c *composer) timeLabels(slots []grid.Slot) []Text {
	labels := make([]Text, len(slots))
	for i, s := range slots {
		y := c.gridTop + float64(i)*c.rowH + c.rowH/2
		labels[i] = Text{
			X:      c.dayLeft - c.scale.Of(labelInset),
			Y:      centeredBaseline(y, c.fonts.Time),
			Value:  grid.SlotLabel(s),
			Size:   c.fonts.Time,
			Anchor: AnchorEnd,
			Bold:   s.HourBoundary,
			Color:  Navy,
		}
	}
	return labels
}

func (c *composer) blocks(placements []Placement) []Block {
	blocks := make([]Block, len(placements))
	for i, p := range placements {
		r := c.blockRect(p.Position)
		style := StyleFor(p.Category).Scaled(c.scale.Factor)
		b := Block{
			Rect:      r,
			ID:        p.Event.StableID(),
			Title:     p.Event.Title,
			TimeLabel: p.Event.TimeRange(c.cfg.location()),
			Category:  p.Category,
			Position:  p.Position,
			Style:     style,
		}
		b.Labels = c.blockLabels(b)
		blocks[i] = b
	}
	return blocks
}

// blockRect applies the event rectangle formula.
func (c *composer) blockRect(p grid.Position) Rect {
	laneCount := max(1, p.LaneCount)
	laneW := c.colW / float64(laneCount)
	spanH := float64(p.Span())*c.rowH - c.cfg.BlockGap
	return Rect{
		X: c.dayLeft + float64(p.DayIndex)*c.colW + float64(p.Lane)*laneW,
		Y: c.gridTop + float64(p.StartSlot)*c.rowH,
		W: max(0, laneW-c.cfg.LaneGap),
		H: max(0, spanH, c.rowH-c.cfg.BlockGap),
	}
}

func (c *composer) blockLabels(b Block) []Text {
	font := c.fonts.Event
	pad := c.scale.Of(blockPadding)
	x := b.X + b.Style.AccentWidth + pad
	avail := b.W - b.Style.AccentWidth - 2*pad
	lineH := font * lineSpacing

	title := FitLabel(b.Title, avail, font)
	if title == "" {
		return nil
	}

	if b.H < pad+2*lineH {
		return []Text{{
			X: x, Y: centeredBaseline(b.CenterY(), font), Value: title,
			Size: font, Anchor: AnchorStart, Bold: true, Color: b.Style.Text,
		}}
	}

	labels := []Text{{
		X: x, Y: b.Y + pad + font, Value: title,
		Size: font, Anchor: AnchorStart, Bold: true, Color: b.Style.Text,
	}}
	if tl := FitLabel(b.TimeLabel, avail, font); tl != "" {
		labels = append(labels, Text{
			X: x, Y: b.Y + pad + font + lineH, Value: tl,
			Size: font, Anchor: AnchorStart, Color: b.Style.Text,
		})
	}
	return labels
}
