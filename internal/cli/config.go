package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"regexp"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/mark3labs/tera/internal/emitter"
	"github.com/mark3labs/tera/internal/openapi"
	"github.com/mark3labs/tera/internal/spec"
)

const (
	defaultInput      = "docs.yaml"
	defaultConfigFile = ".teraconfig.yaml"
	ignoreFile        = ".teraignore"
	configEnv         = "TERA_CONFIG"
)

// Config captures all inputs that influence a command after merging
// defaults, config file values, and CLI overrides.
type Config struct {
	Input              string
	Output             string
	Format             string
	IncludeTags        []string
	ExcludeTags        []string
	Methods            []string
	Paths              []string
	Strict             bool
	MaxLength          bool
	PlaceholderSchemes bool
	Force              bool
	DryRun             bool
	Verbose            bool
	Ignore             []string
	ConfigPath         string

	Stdout io.Writer
	Logger *slog.Logger
}

func defaultConfig() Config {
	return Config{Input: defaultInput, Force: true}
}

// EngineOptions maps the strictness switches onto generator options.
func (c *Config) EngineOptions() []openapi.Option {
	var opts []openapi.Option
	if c.MaxLength {
		opts = append(opts, openapi.WithMaxLength())
	}
	if c.PlaceholderSchemes {
		opts = append(opts, openapi.WithPlaceholderSchemes())
	}
	return opts
}

// FilterOptions maps the endpoint selection settings onto filter options.
func (c *Config) FilterOptions() []spec.FilterOption {
	var opts []spec.FilterOption
	if len(c.IncludeTags) > 0 {
		opts = append(opts, spec.WithIncludeTags(c.IncludeTags))
	}
	if len(c.ExcludeTags) > 0 {
		opts = append(opts, spec.WithExcludeTags(c.ExcludeTags))
	}
	if len(c.Methods) > 0 {
		opts = append(opts, spec.WithMethods(c.Methods))
	}
	if len(c.Paths) > 0 {
		opts = append(opts, spec.WithPathPatterns(c.Paths))
	}
	return opts
}

// resolveConfig merges defaults, the config file, .teraignore and the
// command's changed flags, in that order.
func resolveConfig(cmd *cobra.Command, args []string) (*Config, error) {
	cfg := defaultConfig()

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	configPath = strings.TrimSpace(configPath)
	if configPath == "" {
		if env := strings.TrimSpace(os.Getenv(configEnv)); env != "" {
			configPath = env
		} else if _, err := os.Stat(defaultConfigFile); err == nil {
			configPath = defaultConfigFile
		}
	}
	if configPath != "" {
		cfg.ConfigPath = configPath
		if err := applyConfigFromFile(&cfg, configPath); err != nil {
			return nil, err
		}
	}

	if err := applyIgnoreFile(&cfg, ignoreFile); err != nil {
		return nil, err
	}

	if err := applyFlagOverrides(cmd.Flags(), &cfg); err != nil {
		return nil, err
	}
	if len(args) > 0 {
		cfg.Input = args[0]
	}

	cfg.normalize()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	cfg.Stdout = cmd.OutOrStdout()
	cfg.Logger = newLogger(cmd.ErrOrStderr(), cfg.Verbose)
	return &cfg, nil
}

func applyFlagOverrides(flags *pflag.FlagSet, cfg *Config) error {
	stringFlags := map[string]*string{
		"output": &cfg.Output,
		"format": &cfg.Format,
	}
	for name, dst := range stringFlags {
		if flags.Lookup(name) == nil || !flags.Changed(name) {
			continue
		}
		value, err := flags.GetString(name)
		if err != nil {
			return err
		}
		*dst = strings.TrimSpace(value)
	}

	sliceFlags := map[string]*[]string{
		"include-tags": &cfg.IncludeTags,
		"exclude-tags": &cfg.ExcludeTags,
		"methods":      &cfg.Methods,
		"paths":        &cfg.Paths,
	}
	for name, dst := range sliceFlags {
		if flags.Lookup(name) == nil || !flags.Changed(name) {
			continue
		}
		value, err := flags.GetStringSlice(name)
		if err != nil {
			return err
		}
		*dst = sanitizeList(value)
	}
	// Flag ignores extend rather than replace the file-based list.
	if flags.Lookup("ignore") != nil && flags.Changed("ignore") {
		value, err := flags.GetStringSlice("ignore")
		if err != nil {
			return err
		}
		cfg.Ignore = sanitizeList(append(cfg.Ignore, value...))
	}

	boolFlags := map[string]*bool{
		"strict":              &cfg.Strict,
		"max-length":          &cfg.MaxLength,
		"placeholder-schemes": &cfg.PlaceholderSchemes,
		"force":               &cfg.Force,
		"dry-run":             &cfg.DryRun,
		"verbose":             &cfg.Verbose,
	}
	for name, dst := range boolFlags {
		if flags.Lookup(name) == nil || !flags.Changed(name) {
			continue
		}
		value, err := flags.GetBool(name)
		if err != nil {
			return err
		}
		*dst = value
	}

	return nil
}

func (c *Config) normalize() {
	c.Input = strings.TrimSpace(c.Input)
	if c.Input == "" {
		c.Input = defaultInput
	}
	c.Output = strings.TrimSpace(c.Output)
	c.Format = strings.ToLower(strings.TrimSpace(c.Format))
	c.IncludeTags = sanitizeList(c.IncludeTags)
	c.ExcludeTags = sanitizeList(c.ExcludeTags)
	c.Methods = sanitizeList(c.Methods)
	c.Paths = sanitizeList(c.Paths)
	c.Ignore = sanitizeList(c.Ignore)
}

func (c *Config) validate() error {
	if c.Format != "" {
		if _, err := emitter.ParseFormat(c.Format); err != nil {
			return newUsageError(fmt.Sprintf("unsupported --format %q (allowed: json, yaml, markdown, html)", c.Format))
		}
	}
	for _, m := range c.Methods {
		if !spec.Method(strings.ToUpper(m)).Valid() {
			return newUsageError(fmt.Sprintf("unsupported --methods value %q", m))
		}
	}
	for _, p := range c.Paths {
		if _, err := regexp.Compile(strings.TrimSpace(p)); err != nil {
			return newUsageError(fmt.Sprintf("invalid --paths pattern %q: %v", p, err))
		}
	}
	if overlap := intersect(c.IncludeTags, c.ExcludeTags); len(overlap) > 0 {
		return newUsageError(fmt.Sprintf("include/exclude tags overlap: %s", strings.Join(overlap, ", ")))
	}
	return nil
}

func applyConfigFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return newUsageError(fmt.Sprintf("read config file %q: %v", path, err))
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return newUsageError(fmt.Sprintf("parse config file %q: %v", path, err))
	}

	strs := map[string]*string{
		"input":  &cfg.Input,
		"output": &cfg.Output,
		"format": &cfg.Format,
	}
	lists := map[string]*[]string{
		"includetags": &cfg.IncludeTags,
		"excludetags": &cfg.ExcludeTags,
		"methods":     &cfg.Methods,
		"paths":       &cfg.Paths,
		"ignore":      &cfg.Ignore,
	}
	bools := map[string]*bool{
		"strict":             &cfg.Strict,
		"maxlength":          &cfg.MaxLength,
		"placeholderschemes": &cfg.PlaceholderSchemes,
		"force":              &cfg.Force,
		"dryrun":             &cfg.DryRun,
		"verbose":            &cfg.Verbose,
	}

	for key, value := range raw {
		normalized := normalizeKey(key)
		var err error
		if dst, ok := strs[normalized]; ok {
			*dst, err = valueAsString(value)
		} else if dst, ok := lists[normalized]; ok {
			var list []string
			list, err = valueAsStringSlice(value)
			*dst = sanitizeList(list)
		} else if dst, ok := bools[normalized]; ok {
			*dst, err = valueAsBool(value)
		} else {
			return newUsageError(fmt.Sprintf("config file %q: unknown field %q", path, key))
		}
		if err != nil {
			return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
		}
	}

	return nil
}

// applyIgnoreFile appends the codes listed in path, one per line with '#'
// comments, to cfg.Ignore. A missing file is not an error.
func applyIgnoreFile(cfg *Config, path string) error {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return newUsageError(fmt.Sprintf("read ignore file %q: %v", path, err))
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		if line = strings.TrimSpace(line); line != "" {
			cfg.Ignore = append(cfg.Ignore, line)
		}
	}
	if err := sc.Err(); err != nil {
		return newUsageError(fmt.Sprintf("read ignore file %q: %v", path, err))
	}
	cfg.Ignore = sanitizeList(cfg.Ignore)
	return nil
}

func normalizeKey(raw string) string {
	lowered := strings.ToLower(strings.TrimSpace(raw))
	lowered = strings.ReplaceAll(lowered, "-", "")
	lowered = strings.ReplaceAll(lowered, "_", "")
	return lowered
}

func valueAsString(v any) (string, error) {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val), nil
	case nil:
		return "", nil
	default:
		return "", fmt.Errorf("expected string, got %T", v)
	}
}

func valueAsStringSlice(v any) ([]string, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case string:
		return splitAndTrim(val), nil
	case []any:
		items := make([]string, 0, len(val))
		for idx, elem := range val {
			str, err := valueAsString(elem)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", idx, err)
			}
			if str != "" {
				items = append(items, str)
			}
		}
		return items, nil
	default:
		return nil, fmt.Errorf("expected string or list, got %T", v)
	}
}

func valueAsBool(v any) (bool, error) {
	switch val := v.(type) {
	case bool:
		return val, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "true", "t", "1", "yes", "y":
			return true, nil
		case "false", "f", "0", "no", "n", "":
			return false, nil
		default:
			return false, fmt.Errorf("invalid boolean value %q", val)
		}
	case nil:
		return false, nil
	default:
		return false, fmt.Errorf("expected boolean, got %T", v)
	}
}

func splitAndTrim(csv string) []string {
	parts := strings.Split(csv, ",")
	cleaned := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	return cleaned
}

// sanitizeList trims, drops empties and de-duplicates, keeping first
// occurrences in order.
func sanitizeList(items []string) []string {
	if len(items) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(items))
	result := make([]string, 0, len(items))
	for _, item := range items {
		trimmed := strings.TrimSpace(item)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		result = append(result, trimmed)
	}
	if len(result) == 0 {
		return nil
	}
	return result
}

func intersect(a, b []string) []string {
	if len(a) == 0 || len(b) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(a))
	for _, item := range a {
		set[item] = struct{}{}
	}
	var result []string
	for _, item := range b {
		if _, ok := set[item]; ok {
			result = append(result, item)
		}
	}
	return result
}
