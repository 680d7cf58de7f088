// Package config loads the timegrid configuration file.
//
// The file is TOML or YAML, chosen by extension, and lives at
// ~/.config/timegrid/config.toml by default:
//
//	timezone   = "America/New_York"
//	start_hour = 6
//	end_hour   = 23
//	target     = "letter-landscape"
//
//	[classifier]
//	practice_keywords = ["Appointment"]
//
//	[[sources]]
//	name        = "practice"
//	path        = "~/exports/simplepractice.json"
//	source_kind = "simplepractice"
//
//	[[sources]]
//	name = "personal"
//	url  = "https://calendar.google.com/calendar/ical/.../basic.ics"
//	source_kind = "google"
//
//	[cache]
//	backend = "file"
//
//	[watch]
//	cron    = "*/15 * * * *"
//	output  = "~/planner"
//	formats = ["pdf", "epd"]
//
// Every key is optional. [File.Layout] turns the file into a
// [layout.Config]; command-line flags override individual fields
// afterwards.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/timegrid/pkg/calendar"
	"github.com/matzehuels/timegrid/pkg/errors"
	"github.com/matzehuels/timegrid/pkg/grid"
	"github.com/matzehuels/timegrid/pkg/layout"
	"github.com/matzehuels/timegrid/pkg/source"
)

// Cache backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
)

// Defaults for fields the file leaves empty.
const (
	DefaultListen = "127.0.0.1:8080"
	DefaultCron   = "*/15 * * * *"
	DefaultView   = "week"
)

// File is the decoded configuration file.
type File struct {
	Timezone    string `toml:"timezone" yaml:"timezone"`
	StartHour   *int   `toml:"start_hour" yaml:"start_hour"`
	EndHour     *int   `toml:"end_hour" yaml:"end_hour"`
	SlotMinutes int    `toml:"slot_minutes" yaml:"slot_minutes"`
	Target      string `toml:"target" yaml:"target"`
	LaneScope   string `toml:"lane_scope" yaml:"lane_scope"`
	OutOfRange  string `toml:"out_of_range" yaml:"out_of_range"`

	Classifier ClassifierConfig `toml:"classifier" yaml:"classifier"`
	Sources    []SourceConfig   `toml:"sources" yaml:"sources"`
	Cache      CacheConfig      `toml:"cache" yaml:"cache"`
	Serve      ServeConfig      `toml:"serve" yaml:"serve"`
	Watch      WatchConfig      `toml:"watch" yaml:"watch"`

	path string
}

// ClassifierConfig extends the default classifier.
type ClassifierConfig struct {
	PracticeKeywords  []string `toml:"practice_keywords" yaml:"practice_keywords"`
	PracticeCalendars []string `toml:"practice_calendars" yaml:"practice_calendars"`
	HolidayCalendars  []string `toml:"holiday_calendars" yaml:"holiday_calendars"`
}

// SourceConfig is one [[sources]] entry.
type SourceConfig struct {
	Name       string `toml:"name" yaml:"name"`
	Kind       string `toml:"kind" yaml:"kind"`
	Path       string `toml:"path" yaml:"path"`
	URL        string `toml:"url" yaml:"url"`
	MongoURI   string `toml:"mongo_uri" yaml:"mongo_uri"`
	Database   string `toml:"database" yaml:"database"`
	Collection string `toml:"collection" yaml:"collection"`
	SourceKind string `toml:"source_kind" yaml:"source_kind"`
	CalendarID string `toml:"calendar_id" yaml:"calendar_id"`
	Holiday    bool   `toml:"holiday" yaml:"holiday"`
}

// CacheConfig selects the artifact and feed cache.
type CacheConfig struct {
	Backend   string `toml:"backend" yaml:"backend"`
	Dir       string `toml:"dir" yaml:"dir"`
	RedisAddr string `toml:"redis_addr" yaml:"redis_addr"`
	RedisDB   int    `toml:"redis_db" yaml:"redis_db"`
	TTL       string `toml:"ttl" yaml:"ttl"` // artifact TTL, e.g. "168h"
}

// ServeConfig configures the HTTP API.
type ServeConfig struct {
	Listen string `toml:"listen" yaml:"listen"`
}

// WatchConfig configures scheduled re-export.
type WatchConfig struct {
	Cron    string   `toml:"cron" yaml:"cron"`
	Output  string   `toml:"output" yaml:"output"`
	Formats []string `toml:"formats" yaml:"formats"`
	View    string   `toml:"view" yaml:"view"`
}

// DefaultPath returns ~/.config/timegrid/config.toml, or the empty string
// when no config directory can be determined.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "timegrid", "config.toml")
}

// Default returns the configuration used when no file exists.
func Default() *File {
	f := &File{}
	f.Normalize()
	return f
}

// Load reads the file at path. A missing file at the default location is
// not an error and yields [Default]; a missing file named explicitly is.
func Load(path string) (*File, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
		if path == "" {
			return Default(), nil
		}
	}
	path = ExpandHome(path)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) && !explicit {
		return Default(), nil
	}
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "read config %s", path)
	}

	f, err := Parse(data, filepath.Ext(path))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "config file %s", path)
	}
	f.path = path
	return f, nil
}

// Parse decodes data as TOML or YAML according to ext (".toml", ".yaml",
// ".yml"). An empty ext means TOML.
func Parse(data []byte, ext string) (*File, error) {
	var f File
	switch strings.ToLower(ext) {
	case "", ".toml":
		md, err := toml.Decode(string(data), &f)
		if err != nil {
			return nil, err
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, errors.New(errors.ErrCodeInvalidInput, "unknown key %q", undecoded[0].String())
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, err
		}
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported config format %q (want .toml, .yaml or .yml)", ext)
	}
	f.Normalize()
	return &f, nil
}

// Path returns the file the configuration was loaded from, if any.
func (f *File) Path() string { return f.path }

// Normalize fills empty fields with defaults.
func (f *File) Normalize() {
	if f.Target == "" {
		f.Target = DefaultPreset
	}
	if f.Cache.Backend == "" {
		f.Cache.Backend = BackendFile
	}
	if f.Serve.Listen == "" {
		f.Serve.Listen = DefaultListen
	}
	if f.Watch.Cron == "" {
		f.Watch.Cron = DefaultCron
	}
	if f.Watch.View == "" {
		f.Watch.View = DefaultView
	}
}

// Location loads the configured time zone. Empty means the local zone.
func (f *File) Location() (*time.Location, error) {
	if f.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(f.Timezone)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeConfiguration, err, "timezone %q", f.Timezone)
	}
	return loc, nil
}

// Layout builds the layout configuration for the configured target.
func (f *File) Layout() (layout.Config, error) {
	preset, err := LookupPreset(f.Target)
	if err != nil {
		return layout.Config{}, err
	}
	cfg := preset.Apply(layout.DefaultConfig())

	if f.StartHour != nil {
		cfg.StartHour = *f.StartHour
	}
	if f.EndHour != nil {
		cfg.EndHour = *f.EndHour
	}
	if f.SlotMinutes != 0 {
		cfg.SlotMinutes = f.SlotMinutes
	}
	if f.LaneScope != "" {
		if cfg.LaneScope, err = grid.ParseLaneScope(f.LaneScope); err != nil {
			return layout.Config{}, errors.Wrap(errors.ErrCodeConfiguration, err, "lane_scope")
		}
	}
	if f.OutOfRange != "" {
		if cfg.OutOfRange, err = grid.ParseOutOfRangePolicy(f.OutOfRange); err != nil {
			return layout.Config{}, errors.Wrap(errors.ErrCodeConfiguration, err, "out_of_range")
		}
	}
	if cfg.Location, err = f.Location(); err != nil {
		return layout.Config{}, err
	}
	classifier := f.Classifier.Build()
	cfg.Classifier = &classifier

	return cfg, cfg.Validate()
}

// Build returns the default classifier extended with the configured
// keywords and calendars.
func (c ClassifierConfig) Build() calendar.Classifier {
	cl := calendar.DefaultClassifier()
	if len(c.PracticeKeywords) > 0 {
		cl.PracticeKeywords = c.PracticeKeywords
	}
	cl.PracticeCalendars = append(cl.PracticeCalendars, c.PracticeCalendars...)
	cl.HolidayCalendars = append(cl.HolidayCalendars, c.HolidayCalendars...)
	return cl
}

// SourceSpecs converts the [[sources]] entries for [source.Open].
func (f *File) SourceSpecs() []source.Spec {
	specs := make([]source.Spec, len(f.Sources))
	for i, s := range f.Sources {
		specs[i] = source.Spec{
			Name:       s.Name,
			Kind:       s.Kind,
			Path:       ExpandHome(s.Path),
			URL:        s.URL,
			MongoURI:   s.MongoURI,
			Database:   s.Database,
			Collection: s.Collection,
			SourceKind: s.SourceKind,
			CalendarID: s.CalendarID,
			Holiday:    s.Holiday,
		}
	}
	return specs
}

// ArtifactTTL parses cache.ttl. Zero means the cache default.
func (c CacheConfig) ArtifactTTL() (time.Duration, error) {
	if c.TTL == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.TTL)
	if err != nil || d < 0 {
		return 0, errors.New(errors.ErrCodeInvalidInput, "cache ttl %q is not a duration", c.TTL)
	}
	return d, nil
}

// ExpandHome replaces a leading "~/" with the user's home directory.
func ExpandHome(p string) string {
	if !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, p[2:])
}
