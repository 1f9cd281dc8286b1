package cli

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mark3labs/tera/internal/emitter"
	"github.com/mark3labs/tera/internal/openapi"
	"github.com/mark3labs/tera/internal/spec"
)

var buildRunner = runBuild

func newBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build [input]",
		Short: "Build documentation from a YAML or JSON description",
		Long: "Build an OpenAPI document (or Markdown/HTML reference) from a description file or http(s) URL. " +
			"Options can be provided via flags, config files, or defaults.",
		Example: strings.TrimSpace(`  tera build
  tera build api.yaml -o openapi.yaml
  tera build https://example.com/docs.yaml --format html -o docs.html
  tera --config ci.yaml build --strict --include-tags users`),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, args)
			if err != nil {
				return err
			}
			return buildRunner(cmd.Context(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.StringP("output", "o", "", "Output file (defaults to the input name with the format's extension)")
	flags.String("format", "", "Output format (json|yaml|markdown|html); derived from --output when omitted")
	flags.StringSlice("include-tags", nil, "Only include endpoints with these tags")
	flags.StringSlice("exclude-tags", nil, "Exclude endpoints with these tags")
	flags.StringSlice("methods", nil, "Only include endpoints with these HTTP methods")
	flags.StringSlice("paths", nil, "Only include endpoints whose path matches one of these regular expressions")
	flags.Bool("strict", false, "Fail on generation findings and validate the output with kin-openapi")
	flags.Bool("max-length", false, "Emit maxLength for string parameters")
	flags.Bool("placeholder-schemes", false, "Emit security schemes for basic and apikey auth")
	flags.Bool("force", true, "Overwrite the output file if it exists")
	flags.Bool("dry-run", false, "Render and report the planned output without writing it")

	return cmd
}

func runBuild(ctx context.Context, cfg *Config) error {
	logger := cfg.Logger
	fmt.Fprintln(cfg.Stdout, "Building from YAML...")

	// 1) Load and validate the description (file or http/https URL)
	schema, err := spec.Load(ctx, cfg.Input, spec.WithLogger(logger))
	if err != nil {
		return wrapLoadError(err)
	}

	// 2) Select endpoints
	total := len(schema.Endpoints)
	schema = spec.Filter(schema, cfg.FilterOptions()...)
	logger.Debug("endpoints selected", "kept", len(schema.Endpoints), "total", total)

	// 3) Strict mode refuses anything the generator would silently rewrite
	engineOpts := cfg.EngineOptions()
	if cfg.Strict {
		if findings := openapi.Check(schema, engineOpts...); len(findings) > 0 {
			lines := make([]string, 0, len(findings))
			for _, f := range findings {
				lines = append(lines, "  - "+f.String())
			}
			return newUsageError(fmt.Sprintf("strict: %d generation finding(s)\n%s", len(findings), strings.Join(lines, "\n")))
		}
	}

	// 4) Assemble and emit
	doc := openapi.Assemble(schema, engineOpts...)
	if cfg.Strict {
		if err := openapi.Validate(ctx, doc); err != nil {
			return fmt.Errorf("strict: %w", err)
		}
	}

	format, err := resolveFormat(cfg)
	if err != nil {
		return err
	}
	output := cfg.Output
	if output == "" {
		output = defaultOutput(cfg.Input, format)
	}
	res, err := emitter.Emit(ctx, schema, doc, emitter.Options{
		Path:   output,
		Format: format,
		Force:  cfg.Force,
		DryRun: cfg.DryRun,
		Logger: logger,
	})
	if err != nil {
		if errors.Is(err, emitter.ErrExists) {
			return newUsageError(err.Error())
		}
		return fmt.Errorf("write output: %w", err)
	}

	if cfg.DryRun {
		fmt.Fprintf(cfg.Stdout, "Planned write to %s (%s, %d bytes)\n", res.Planned.Path, res.Format, res.Planned.Size)
		return nil
	}
	fmt.Fprintln(cfg.Stdout, "Operation successful!")
	fmt.Fprintf(cfg.Stdout, "   Input:  %s\n", cfg.Input)
	fmt.Fprintf(cfg.Stdout, "   Output: %s\n", res.Planned.Path)
	return nil
}

// resolveFormat prefers an explicit format, then the output extension.
func resolveFormat(cfg *Config) (emitter.Format, error) {
	if cfg.Format != "" {
		f, err := emitter.ParseFormat(cfg.Format)
		if err != nil {
			return "", newUsageError(err.Error())
		}
		return f, nil
	}
	if cfg.Output != "" {
		return emitter.FormatFromPath(cfg.Output), nil
	}
	return emitter.FormatJSON, nil
}

var formatExt = map[emitter.Format]string{
	emitter.FormatJSON:     ".json",
	emitter.FormatYAML:     ".yaml",
	emitter.FormatMarkdown: ".md",
	emitter.FormatHTML:     ".html",
}

// defaultOutput swaps the input's extension for the format's. URL inputs
// are written to the working directory under the last path segment.
func defaultOutput(input string, format emitter.Format) string {
	name := input
	if u, err := url.Parse(input); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		name = path.Base(u.Path)
		if name == "/" || name == "." {
			name = "openapi"
		}
	}
	ext := formatExt[format]
	base := strings.TrimSuffix(name, filepath.Ext(name))
	// Building docs.json as JSON would overwrite the input.
	if filepath.Clean(base+ext) == filepath.Clean(input) {
		return base + ".openapi" + ext
	}
	return base + ext
}
