// Package emitter renders a generated document to JSON, YAML, Markdown or a
// standalone HTML page and writes it to disk.
package emitter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/mark3labs/tera/internal/openapi"
	"github.com/mark3labs/tera/internal/spec"
)

type Format string

const (
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
)

// Formats lists the supported output formats.
var Formats = []Format{FormatJSON, FormatYAML, FormatMarkdown, FormatHTML}

// ErrExists is returned when the output file exists and Force is not set.
var ErrExists = errors.New("emitter: output file already exists")

// ParseFormat accepts a format name or one of its common aliases.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "html", "htm":
		return FormatHTML, nil
	}
	return "", fmt.Errorf("emitter: unknown format %q (expected json, yaml, markdown or html)", s)
}

// FormatFromPath picks the format from the file extension. Anything not
// recognized is written as JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".md", ".markdown":
		return FormatMarkdown
	case ".html", ".htm":
		return FormatHTML
	}
	return FormatJSON
}

// Options controls how a document is written.
type Options struct {
	Path   string // required; output file
	Format Format // derived from Path when empty
	Force  bool   // overwrite an existing file
	DryRun bool   // render and plan, don't write
	Logger *slog.Logger
}

// PlannedFile describes the file the emitter writes (or would write).
type PlannedFile struct {
	Path string
	Size int
	Mode os.FileMode
}

type Result struct {
	Format  Format
	Planned PlannedFile
	Written bool
}

// Emit renders doc (and, for Markdown, the source schema) in the requested
// format and writes it atomically to opts.Path.
func Emit(ctx context.Context, schema *spec.Schema, doc *openapi.Document, opts Options) (*Result, error) {
	if doc == nil || schema == nil {
		return nil, errors.New("emitter: nil document")
	}
	if strings.TrimSpace(opts.Path) == "" {
		return nil, errors.New("emitter: Path is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	format := opts.Format
	if format == "" {
		format = FormatFromPath(opts.Path)
	}

	content, err := Render(schema, doc, format)
	if err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(opts.Path)
	if err != nil {
		return nil, fmt.Errorf("resolve output path: %w", err)
	}
	res := &Result{Format: format, Planned: PlannedFile{Path: abs, Size: len(content), Mode: 0o644}}
	if opts.DryRun {
		logger.Info("dry run, nothing written", "path", abs, "format", format, "bytes", len(content))
		return res, nil
	}
	if err := writeFile(abs, content, opts.Force); err != nil {
		return nil, err
	}
	res.Written = true
	logger.Debug("wrote output", "path", abs, "format", format, "bytes", len(content))
	return res, nil
}

// Render returns the bytes Emit would write.
func Render(schema *spec.Schema, doc *openapi.Document, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		return renderJSON(doc)
	case FormatYAML:
		return renderYAML(doc)
	case FormatMarkdown:
		return renderMarkdown(schema)
	case FormatHTML:
		return renderHTML(doc)
	}
	return nil, fmt.Errorf("emitter: unknown format %q", format)
}

func writeFile(path string, content []byte, force bool) error {
	if st, err := os.Stat(path); err == nil {
		if st.IsDir() {
			return fmt.Errorf("emitter: output %q is a directory", path)
		}
		if !force {
			return fmt.Errorf("%w: %s (use --force to overwrite)", ErrExists, path)
		}
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	// atomic write via temp file + rename
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(content); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("chmod temp: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("rename %s: %w", filepath.Base(path), err)
	}
	return nil
}
