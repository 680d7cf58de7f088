package render

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// ToPDF converts SVG bytes to PDF using rsvg-convert.
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func ToPDF(ctx context.Context, svg []byte) ([]byte, error) {
	return rsvgConvert(ctx, svg, "pdf")
}

// ToPDFPages converts several SVG documents into one PDF with a page per
// document, in order.
func ToPDFPages(ctx context.Context, svgs [][]byte) ([]byte, error) {
	switch len(svgs) {
	case 0:
		return nil, fmt.Errorf("no pages to convert")
	case 1:
		return ToPDF(ctx, svgs[0])
	}

	dir, err := os.MkdirTemp("", "timegrid-pdf-*")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)

	files := make([]string, len(svgs))
	for i, svg := range svgs {
		files[i] = filepath.Join(dir, fmt.Sprintf("page-%03d.svg", i+1))
		if err := os.WriteFile(files[i], svg, 0o600); err != nil {
			return nil, err
		}
	}
	return rsvgConvert(ctx, nil, "pdf", files...)
}

// ToPNG converts SVG bytes to PNG using rsvg-convert with the given zoom.
// A zoom of 2.0 produces a 2x resolution image.
func ToPNG(ctx context.Context, svg []byte, zoom float64) ([]byte, error) {
	return rsvgConvert(ctx, svg, "png", "-z", fmt.Sprintf("%.2f", zoom))
}

// HasConverter reports whether rsvg-convert is on PATH.
func HasConverter() bool {
	_, err := exec.LookPath("rsvg-convert")
	return err == nil
}

func rsvgConvert(ctx context.Context, svg []byte, format string, extraArgs ...string) ([]byte, error) {
	if !HasConverter() {
		return nil, fmt.Errorf("%s export requires librsvg. Install with:\n  macOS:  brew install librsvg\n  Linux:  apt install librsvg2-bin", format)
	}

	args := append([]string{"-f", format}, extraArgs...)
	cmd := exec.CommandContext(ctx, "rsvg-convert", args...)
	if svg != nil {
		cmd.Stdin = bytes.NewReader(svg)
	}

	var out, errBuf bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errBuf

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("rsvg-convert: %v: %s", err, errBuf.String())
	}
	return out.Bytes(), nil
}
