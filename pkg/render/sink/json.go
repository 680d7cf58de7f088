package sink

import (
	"encoding/json"

	"github.com/matzehuels/timegrid/pkg/layout"
)

// JSONOption configures JSON rendering via [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	view      string
	generator string
	compact   bool
}

// WithJSONView records the view name (e.g. "week", "planner") in the output.
func WithJSONView(v string) JSONOption { return func(r *jsonRenderer) { r.view = v } }

// WithJSONGenerator records the producing tool and version.
func WithJSONGenerator(g string) JSONOption { return func(r *jsonRenderer) { r.generator = g } }

// WithJSONCompact disables indentation.
func WithJSONCompact() JSONOption { return func(r *jsonRenderer) { r.compact = true } }

type jsonOutput struct {
	Generator string            `json:"generator,omitempty"`
	View      string            `json:"view,omitempty"`
	Pages     []layout.Resolved `json:"pages"`
}

// RenderJSON serializes a single layout. The output always carries a pages
// array so single and multi-page documents share a shape.
func RenderJSON(l layout.Resolved, opts ...JSONOption) ([]byte, error) {
	return RenderJSONPages([]layout.Resolved{l}, opts...)
}

// RenderJSONPages serializes several layouts into one document.
func RenderJSONPages(pages []layout.Resolved, opts ...JSONOption) ([]byte, error) {
	r := jsonRenderer{}
	for _, opt := range opts {
		opt(&r)
	}
	out := jsonOutput{Generator: r.generator, View: r.view, Pages: pages}
	if out.Pages == nil {
		out.Pages = []layout.Resolved{}
	}
	if r.compact {
		return json.Marshal(out)
	}
	return json.MarshalIndent(out, "", "  ")
}
