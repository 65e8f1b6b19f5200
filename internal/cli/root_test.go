package cli

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func TestEnvFillsUnsetFlags(t *testing.T) {
	t.Setenv("QUIZBOARD_PORT", "9191")

	cmd := newRootCmd()
	fs := cmd.PersistentFlags()
	if err := bindEnv(fs); err != nil {
		t.Fatalf("bind env: %v", err)
	}
	if got, _ := fs.GetString("port"); got != "9191" {
		t.Fatalf("expected port from env, got %q", got)
	}
}

func TestExplicitFlagBeatsEnv(t *testing.T) {
	t.Setenv("QUIZBOARD_PORT", "9191")

	cmd := newRootCmd()
	fs := cmd.PersistentFlags()
	if err := fs.Set("port", "7000"); err != nil {
		t.Fatalf("set flag: %v", err)
	}
	if err := bindEnv(fs); err != nil {
		t.Fatalf("bind env: %v", err)
	}
	if got, _ := fs.GetString("port"); got != "7000" {
		t.Fatalf("expected explicit flag kept, got %q", got)
	}
}

func TestQuizzesCommandListsSamples(t *testing.T) {
	// no config/config.yaml here
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"quizzes"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(out.String(), "general-knowledge") {
		t.Fatalf("expected bundled quiz in output, got:\n%s", out.String())
	}
}

func TestExplicitMissingConfigFails(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"quizzes", "--config", t.TempDir() + "/absent.yaml"})
	if err := cmd.Execute(); err == nil {
		t.Fatalf("expected error for explicit missing config")
	}
}
