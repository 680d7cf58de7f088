package source

import (
	"cmp"
	"context"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/timegrid/pkg/calendar"
	"github.com/matzehuels/timegrid/pkg/errors"
	"github.com/matzehuels/timegrid/pkg/httputil"
)

// Source kinds accepted by [Open].
const (
	KindJSON  = "json"
	KindICS   = "ics"
	KindMongo = "mongo"
)

// Spec describes a configured source.
type Spec struct {
	Name string
	Kind string // json, ics or mongo; inferred from Path or URL when empty

	Path string
	URL  string

	MongoURI   string
	Database   string
	Collection string

	SourceKind string // hint kind stamped on events, e.g. "google"
	CalendarID string
	Holiday    bool
}

// Env carries the shared dependencies of opened sources.
type Env struct {
	Location *time.Location
	Client   *httputil.Client
	Refresh  bool
	Logger   *log.Logger
	Stdin    io.Reader
}

// Open builds the source described by spec.
func Open(ctx context.Context, spec Spec, env Env) (Named, error) {
	kind := strings.ToLower(spec.Kind)
	if kind == "" {
		kind = InferKind(spec.Path + spec.URL)
	}
	name := spec.Name
	if name == "" {
		name = cmp.Or(spec.Path, spec.URL, spec.Collection, kind)
	}
	hint := calendar.SourceHint{Kind: spec.SourceKind, CalendarID: spec.CalendarID, Holiday: spec.Holiday}

	switch kind {
	case KindJSON:
		if spec.URL != "" {
			return Named{}, errors.New(errors.ErrCodeUnsupported, "source %s: json sources read local files only", name)
		}
		return Named{Name: name, Source: JSONFile{Path: spec.Path, Reader: env.Stdin, Location: env.Location, Defaults: hint}}, nil
	case KindICS:
		if hint.Kind == "" {
			hint.Kind = calendar.KindICS
		}
		return Named{Name: name, Source: ICS{
			Path:     spec.Path,
			URL:      spec.URL,
			Client:   env.Client,
			Refresh:  env.Refresh,
			Hint:     hint,
			Location: env.Location,
			Logger:   env.Logger,
		}}, nil
	case KindMongo:
		m, err := OpenMongo(ctx, MongoOptions{
			URI:        spec.MongoURI,
			Database:   spec.Database,
			Collection: spec.Collection,
			Defaults:   hint,
		})
		if err != nil {
			return Named{}, err
		}
		return Named{Name: name, Source: m}, nil
	default:
		return Named{}, errors.New(errors.ErrCodeInvalidSource, "source %s: unknown kind %q (want json, ics or mongo)", name, spec.Kind)
	}
}

// InferKind guesses a source kind from a path or URL. Anything that is
// not recognisably JSON is treated as iCalendar.
func InferKind(pathOrURL string) string {
	if pathOrURL == "-" {
		return KindJSON
	}
	p := pathOrURL
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	if strings.EqualFold(filepath.Ext(p), ".json") {
		return KindJSON
	}
	return KindICS
}

// Close closes every source that holds a connection.
func Close(sources []Named) error {
	var first error
	for _, s := range sources {
		if c, ok := s.Source.(io.Closer); ok {
			if err := c.Close(); err != nil && first == nil {
				first = err
			}
		}
	}
	return first
}
