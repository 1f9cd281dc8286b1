package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInit_WritesDocsAndConfig(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	out, err := execute(t, "init", "--dir", dir)
	if err != nil {
		t.Fatalf("init execute: %v", err)
	}

	docs, err := os.ReadFile(filepath.Join(dir, "docs.yaml"))
	if err != nil {
		t.Fatalf("read docs: %v", err)
	}
	if !strings.Contains(string(docs), "endpoints:") {
		t.Fatalf("unexpected docs contents: %s", docs)
	}
	cfg, err := os.ReadFile(filepath.Join(dir, ".teraconfig.yaml"))
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	if !strings.Contains(string(cfg), "tera configuration") {
		t.Fatalf("unexpected config contents: %s", cfg)
	}
	if strings.Count(out, "Wrote ") != 2 {
		t.Fatalf("unexpected output: %s", out)
	}
}

func TestInit_TemplatesBuildAndLintClean(t *testing.T) {
	t.Parallel()
	for _, complete := range []bool{false, true} {
		dir := t.TempDir()
		args := []string{"init", "--dir", dir, "--skip-config"}
		if complete {
			args = append(args, "--complete")
		}
		if _, err := execute(t, args...); err != nil {
			t.Fatalf("init (complete=%v): %v", complete, err)
		}
		if _, err := os.Stat(filepath.Join(dir, ".teraconfig.yaml")); err == nil {
			t.Fatalf("--skip-config still wrote the config file")
		}

		docs := filepath.Join(dir, "docs.yaml")
		out, err := execute(t, "lint", docs, "--strict")
		if err != nil || !strings.Contains(out, "no issues found") {
			t.Fatalf("template (complete=%v) is not lint clean: %v\n%s", complete, err, out)
		}
		if _, err := execute(t, "build", docs, "--strict"); err != nil {
			t.Fatalf("template (complete=%v) does not build: %v", complete, err)
		}
		if _, err := os.Stat(filepath.Join(dir, "docs.json")); err != nil {
			t.Fatalf("build output missing: %v", err)
		}
	}
}

func TestInit_ExistingWithoutForce(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, ".teraconfig.yaml")
	if err := os.WriteFile(path, []byte("x"), 0o600); err != nil {
		t.Fatalf("prewrite: %v", err)
	}

	_, err := execute(t, "init", "--dir", dir)
	if err == nil {
		t.Fatalf("expected error for existing file without --force")
	}
	if _, ok := err.(usageError); !ok {
		t.Fatalf("expected usage error, got %T: %v", err, err)
	}
	if _, err := os.Stat(filepath.Join(dir, "docs.yaml")); err == nil {
		t.Fatalf("docs.yaml written although init failed")
	}

	if _, err := execute(t, "init", "--dir", dir, "--force"); err != nil {
		t.Fatalf("init --force: %v", err)
	}
	data, _ := os.ReadFile(path)
	if string(data) == "x" {
		t.Fatalf("config not overwritten with --force")
	}
}
