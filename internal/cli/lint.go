package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mark3labs/tera/internal/lint"
)

var lintRunner = runLint

func newLintCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lint [file]",
		Short: "Check a description file for errors and quality problems",
		Long: "Check a description file for syntax and structure errors, then for quality problems " +
			"such as missing descriptions or public write endpoints. Exits non-zero when any error is found.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, args)
			if err != nil {
				return err
			}
			return lintRunner(cmd.Context(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.StringSlice("ignore", nil, "Warning codes to ignore (extends config and .teraignore)")
	flags.Bool("strict", false, "Report generation findings as errors and validate the generated document")
	flags.Bool("max-length", false, "Lint as if building with --max-length")
	flags.Bool("placeholder-schemes", false, "Lint as if building with --placeholder-schemes")

	return cmd
}

func runLint(ctx context.Context, cfg *Config) error {
	l := lint.Linter{
		Ignore:  cfg.Ignore,
		Strict:  cfg.Strict,
		Options: cfg.EngineOptions(),
		Logger:  cfg.Logger,
	}
	issues := l.Lint(ctx, cfg.Input)
	if len(issues) == 0 {
		fmt.Fprintf(cfg.Stdout, "%s: no issues found\n", cfg.Input)
		return nil
	}

	var errs, warns int
	for _, i := range issues {
		fmt.Fprintln(cfg.Stdout, i.String())
		if i.Severity == lint.SeverityError {
			errs++
		} else {
			warns++
		}
	}
	fmt.Fprintf(cfg.Stdout, "%s: %d error(s), %d warning(s)\n", cfg.Input, errs, warns)
	if errs > 0 {
		return ErrLintFailed
	}
	return nil
}
