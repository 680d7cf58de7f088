package pipeline

import (
	"context"
	"fmt"

	"github.com/matzehuels/timegrid/pkg/buildinfo"
	"github.com/matzehuels/timegrid/pkg/layout"
	"github.com/matzehuels/timegrid/pkg/render/sink"
)

// Content types of the rendered formats.
var contentTypes = map[string]string{
	FormatSVG:  "image/svg+xml",
	FormatPNG:  "image/png",
	FormatPDF:  "application/pdf",
	FormatEPD:  "application/octet-stream",
	FormatJSON: "application/json",
	FormatText: "text/plain; charset=utf-8",
}

var extensions = map[string]string{
	FormatSVG:  ".svg",
	FormatPNG:  ".png",
	FormatPDF:  ".pdf",
	FormatEPD:  ".bin",
	FormatJSON: ".json",
	FormatText: ".txt",
}

// ContentType returns the MIME type of a format.
func ContentType(format string) string { return contentTypes[format] }

// Extension returns the file extension of a format, including the dot.
func Extension(format string) string { return extensions[format] }

// BundleName names single-file outputs that hold every page of an export
// (PDF and JSON): the page name for one-page views, "planner-<monday>"
// otherwise.
func BundleName(pages []Page, view string) string {
	if len(pages) == 0 {
		return view
	}
	if len(pages) == 1 {
		return pages[0].Name
	}
	return view + "-" + pages[0].Date.String()
}

// Render encodes pages in one format. PDF and JSON produce a single
// artifact holding every page; the other formats produce one per page.
// Pages are rendered one at a time.
func Render(ctx context.Context, pages []Page, format string, opts Options) ([]Artifact, error) {
	layouts := make([]layout.Resolved, len(pages))
	for i, p := range pages {
		layouts[i] = p.Layout
	}

	bundle := func(data []byte) []Artifact {
		return []Artifact{{
			Name:        BundleName(pages, opts.View) + Extension(format),
			Format:      format,
			ContentType: ContentType(format),
			Data:        data,
		}}
	}

	switch format {
	case FormatPDF:
		data, err := sink.RenderPDFPages(ctx, layouts, sink.WithPDFSVGOptions(svgOptions(opts, Page{})...))
		if err != nil {
			return nil, err
		}
		return bundle(data), nil
	case FormatJSON:
		data, err := sink.RenderJSONPages(layouts,
			sink.WithJSONView(opts.View),
			sink.WithJSONGenerator(buildinfo.Generator()))
		if err != nil {
			return nil, err
		}
		return bundle(data), nil
	}

	artifacts := make([]Artifact, 0, len(pages))
	for _, p := range pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := renderPage(ctx, p, format, opts)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p.Name, err)
		}
		artifacts = append(artifacts, Artifact{
			Name:        p.Name + Extension(format),
			Format:      format,
			ContentType: ContentType(format),
			Data:        data,
		})
	}
	return artifacts, nil
}

func renderPage(ctx context.Context, p Page, format string, opts Options) ([]byte, error) {
	switch format {
	case FormatSVG:
		return sink.RenderSVG(p.Layout, svgOptions(opts, p)...), nil
	case FormatPNG:
		return sink.RenderPNG(ctx, p.Layout, sink.WithZoom(opts.Preset().Zoom))
	case FormatEPD:
		planes, err := sink.RenderEPD(p.Layout)
		if err != nil {
			return nil, err
		}
		return planes.Bytes(), nil
	case FormatText:
		return sink.RenderText(p.Layout), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

func svgOptions(opts Options, p Page) []sink.SVGOption {
	var svgOpts []sink.SVGOption
	title := opts.Title
	if title == "" && p.Name != "" {
		title = p.Name
	}
	if title != "" {
		svgOpts = append(svgOpts, sink.WithSVGTitle(title))
	}
	if p.Name != "" && len(p.Layout.Links) > 0 {
		svgOpts = append(svgOpts, sink.WithLinkTargets(svgLinkTarget))
	}
	return svgOpts
}

// svgLinkTarget points a planner link at the sibling SVG file of the page
// it leads to.
func svgLinkTarget(l layout.Link) string {
	return PageName(l.Kind, l.Date) + Extension(FormatSVG)
}
