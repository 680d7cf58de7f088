package layout

import (
	"github.com/matzehuels/timegrid/pkg/calendar"
	"github.com/matzehuels/timegrid/pkg/grid"
)

// Rect is an axis-aligned rectangle with its origin at the top-left.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Right returns the x coordinate of the right edge.
func (r Rect) Right() float64 { return r.X + r.W }

// Bottom returns the y coordinate of the bottom edge.
func (r Rect) Bottom() float64 { return r.Y + r.H }

// CenterX returns the horizontal center.
func (r Rect) CenterX() float64 { return r.X + r.W/2 }

// CenterY returns the vertical center.
func (r Rect) CenterY() float64 { return r.Y + r.H/2 }

// Anchor is the horizontal alignment of a text run relative to its X.
type Anchor string

const (
	AnchorStart  Anchor = "start"
	AnchorMiddle Anchor = "middle"
	AnchorEnd    Anchor = "end"
)

// Text is a single line of text. Y is the baseline.
type Text struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Value  string  `json:"value"`
	Size   float64 `json:"size"`
	Anchor Anchor  `json:"anchor"`
	Bold   bool    `json:"bold,omitempty"`
	Color  Color   `json:"color"`
}

// Page is the output surface size.
type Page struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Margin float64 `json:"margin"`
}

// Fonts are the effective font sizes after scaling and the minimum floor.
type Fonts struct {
	Header float64 `json:"header"`
	Time   float64 `json:"time"`
	Event  float64 `json:"event"`
}

// Cell is a header cell: the corner above the time column, or a day.
type Cell struct {
	Rect
	DayIndex int           `json:"dayIndex"` // -1 for the corner
	Date     calendar.Date `json:"date,omitzero"`
	Labels   []Text        `json:"labels,omitempty"`
	Fill     Color         `json:"fill"`
	Border   Color         `json:"border"`
	Stroke   float64       `json:"stroke"` // border width
}

// Row is the full-width rectangle of one time slot.
type Row struct {
	Rect
	Slot int   `json:"slot"`
	Fill Color `json:"fill"`
}

// Line is a grid line.
type Line struct {
	X1       float64 `json:"x1"`
	Y1       float64 `json:"y1"`
	X2       float64 `json:"x2"`
	Y2       float64 `json:"y2"`
	Width    float64 `json:"width"`
	Color    Color   `json:"color"`
	Major    bool    `json:"major,omitempty"`
	Vertical bool    `json:"vertical,omitempty"`
}

// Block is a placed event.
type Block struct {
	Rect
	ID        string            `json:"id"`
	Title     string            `json:"title"`
	TimeLabel string            `json:"timeLabel"`
	Category  calendar.Category `json:"category"`
	Position  grid.Position     `json:"position"`
	Style     Style             `json:"style"`
	Labels    []Text            `json:"labels,omitempty"` // fitted title, then time if it fits
}

// LinkKind is the kind of page a [Link] leads to.
type LinkKind string

const (
	LinkWeek LinkKind = "week"
	LinkDay  LinkKind = "day"
)

// Link is a clickable region that leads to another page of a planner. Date
// is the day for [LinkDay] and the Monday for [LinkWeek].
type Link struct {
	Rect
	Kind  LinkKind      `json:"kind"`
	Date  calendar.Date `json:"date"`
	Label Text          `json:"label,omitzero"`
}

// Resolved is the absolute geometry of one page. It is produced fresh by
// every call and never shares memory with another Resolved.
type Resolved struct {
	Page       Page             `json:"page"`
	Scale      Scale            `json:"scale"`
	Fonts      Fonts            `json:"fonts"`
	Grid       Rect             `json:"grid"` // time column plus day columns, below the header
	Days       []grid.Day       `json:"days"`
	Slots      []grid.Slot      `json:"slots"`
	Header     []Cell           `json:"header"`
	Rows       []Row            `json:"rows"`
	Lines      []Line           `json:"lines"`
	TimeLabels []Text           `json:"timeLabels"`
	Events     []Block          `json:"events"`
	Excluded   []grid.Exclusion `json:"excluded,omitempty"`
	Stats      []DayStats       `json:"stats"`
	Summary    Text             `json:"summary,omitzero"` // stats line of a daily page
	Links      []Link           `json:"links,omitempty"`
}

// DayCount returns the number of day columns.
func (r Resolved) DayCount() int { return len(r.Days) }

// FirstDate returns the date of the first column, or the zero Date for an
// empty layout.
func (r Resolved) FirstDate() calendar.Date {
	if len(r.Days) == 0 {
		return calendar.Date{}
	}
	return r.Days[0].Date
}
