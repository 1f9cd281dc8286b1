package cli

import (
	"context"
	"embed"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

//go:embed templates/*.yaml
var templates embed.FS

// InitConfig captures the options for the init command.
type InitConfig struct {
	Dir        string
	Complete   bool
	SkipConfig bool
	Force      bool
}

var initRunner = runInit

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Scaffold a docs.yaml and a commented .teraconfig.yaml",
		Long: "Scaffold a starter description file (docs.yaml) and a commented configuration file " +
			"(.teraconfig.yaml) that documents available options.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := cmd.Flags().GetString("dir")
			if err != nil {
				return err
			}
			complete, err := cmd.Flags().GetBool("complete")
			if err != nil {
				return err
			}
			skip, err := cmd.Flags().GetBool("skip-config")
			if err != nil {
				return err
			}
			force, err := cmd.Flags().GetBool("force")
			if err != nil {
				return err
			}
			cfg := &InitConfig{Dir: dir, Complete: complete, SkipConfig: skip, Force: force}
			return initRunner(cmd.Context(), cfg, cmd.OutOrStdout())
		},
	}

	cmd.Flags().String("dir", ".", "Directory to write the files into")
	cmd.Flags().Bool("complete", false, "Use the template that shows every supported field")
	cmd.Flags().Bool("skip-config", false, "Do not write .teraconfig.yaml")
	cmd.Flags().Bool("force", false, "Overwrite files that already exist")

	return cmd
}

func runInit(ctx context.Context, cfg *InitConfig, stdout io.Writer) error {
	_ = ctx

	dir := strings.TrimSpace(cfg.Dir)
	if dir == "" {
		dir = "."
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("init: resolve directory: %w", err)
	}

	docTemplate := "templates/docs_standard.yaml"
	if cfg.Complete {
		docTemplate = "templates/docs_complete.yaml"
	}
	files := []struct{ template, name string }{{docTemplate, defaultInput}}
	if !cfg.SkipConfig {
		files = append(files, struct{ template, name string }{"templates/teraconfig.yaml", defaultConfigFile})
	}

	// Check every target before writing anything.
	for _, f := range files {
		target := filepath.Join(absDir, f.name)
		if st, err := os.Stat(target); err == nil && !cfg.Force && st.Mode().IsRegular() {
			return newUsageError(fmt.Sprintf("init: %q already exists (use --force to overwrite)", target))
		}
	}
	if err := os.MkdirAll(absDir, 0o755); err != nil {
		return newUsageError(fmt.Sprintf("init: cannot create directory: %v", err))
	}

	for _, f := range files {
		content, err := templates.ReadFile(f.template)
		if err != nil {
			return fmt.Errorf("init: read template: %w", err)
		}
		target := filepath.Join(absDir, f.name)
		if err := writeAtomic(target, content); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Wrote %s\n", target)
	}
	return nil
}

func writeAtomic(target string, content []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(target), "."+filepath.Base(target)+".*.tmp")
	if err != nil {
		return newUsageError(fmt.Sprintf("init: cannot write temp file: %v\nHint: choose a different --dir or check directory permissions.", err))
	}
	name := tmp.Name()
	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		os.Remove(name)
		return fmt.Errorf("init: write %s: %w", target, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return fmt.Errorf("init: write %s: %w", target, err)
	}
	if err := os.Chmod(name, 0o644); err != nil {
		os.Remove(name)
		return fmt.Errorf("init: chmod %s: %w", target, err)
	}
	if err := os.Rename(name, target); err != nil {
		os.Remove(name)
		return newUsageError(fmt.Sprintf("init: cannot place file at %s: %v", target, err))
	}
	return nil
}
