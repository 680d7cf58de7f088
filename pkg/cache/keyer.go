package cache

import "fmt"

// Keyer builds cache keys.
type Keyer interface {
	// HTTPKey keys a fetched response body.
	HTTPKey(namespace, key string) string

	// ArtifactKey keys a rendered artifact. eventsHash identifies the input
	// events (see [HashJSON]).
	ArtifactKey(eventsHash string, opts ArtifactKeyOpts) string
}

// ArtifactKeyOpts are the inputs besides the events that determine an
// artifact's bytes.
type ArtifactKeyOpts struct {
	Date       string  `json:"date"`
	View       string  `json:"view"`
	Target     string  `json:"target"`
	Format     string  `json:"format"`
	ConfigHash string  `json:"config_hash"`
	Zoom       float64 `json:"zoom,omitempty"`
}

// DefaultKeyer is the standard [Keyer].
type DefaultKeyer struct{}

// NewDefaultKeyer returns a DefaultKeyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// HTTPKey returns "http:<namespace>:<key>".
func (DefaultKeyer) HTTPKey(namespace, key string) string {
	return fmt.Sprintf("http:%s:%s", namespace, key)
}

// ArtifactKey returns "artifact:<hash of inputs>".
func (DefaultKeyer) ArtifactKey(eventsHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", eventsHash, opts)
}

var _ Keyer = DefaultKeyer{}
