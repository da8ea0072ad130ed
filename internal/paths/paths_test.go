package paths

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestGetPaths(t *testing.T) {
	p := GetPaths()

	if p.ConfigDir == "" {
		t.Error("ConfigDir should not be empty")
	}
	if p.DataDir == "" {
		t.Error("DataDir should not be empty")
	}
	if p.StateDir == "" {
		t.Error("StateDir should not be empty")
	}

	if !strings.Contains(p.ConfigDir, "gsefetch") {
		t.Errorf("ConfigDir should contain 'gsefetch', got %q", p.ConfigDir)
	}
	if !strings.Contains(p.DataDir, "gsefetch") {
		t.Errorf("DataDir should contain 'gsefetch', got %q", p.DataDir)
	}
}

func TestGetPathsWithAppEnv(t *testing.T) {
	t.Setenv("GSEFETCH_CONFIG_HOME", "/custom/config")
	t.Setenv("GSEFETCH_DATA_HOME", "/custom/data")
	t.Setenv("GSEFETCH_STATE_HOME", "/custom/state")

	p := GetPaths()

	if p.ConfigDir != "/custom/config" {
		t.Errorf("expected ConfigDir '/custom/config', got %q", p.ConfigDir)
	}
	if p.DataDir != "/custom/data" {
		t.Errorf("expected DataDir '/custom/data', got %q", p.DataDir)
	}
	if p.StateDir != "/custom/state" {
		t.Errorf("expected StateDir '/custom/state', got %q", p.StateDir)
	}
}

func TestGetPathsWithXDGEnv(t *testing.T) {
	t.Setenv("GSEFETCH_CONFIG_HOME", "")
	t.Setenv("XDG_CONFIG_HOME", "/xdg/config")

	p := GetPaths()
	if p.ConfigDir != "/xdg/config/gsefetch" {
		t.Errorf("expected ConfigDir '/xdg/config/gsefetch', got %q", p.ConfigDir)
	}
}

func TestGetDatabasePath(t *testing.T) {
	t.Setenv("GSEFETCH_DB_PATH", "")
	path := GetDatabasePath()
	if !strings.HasSuffix(path, "gsefetch.db") {
		t.Errorf("expected path to end with 'gsefetch.db', got %q", path)
	}

	t.Setenv("GSEFETCH_DB_PATH", "/custom/path/custom.db")
	if path := GetDatabasePath(); path != "/custom/path/custom.db" {
		t.Errorf("expected '/custom/path/custom.db', got %q", path)
	}
}

func TestGetResultsPath(t *testing.T) {
	t.Setenv("GSEFETCH_RESULTS_PATH", "")
	if path := GetResultsPath(); path != "results" {
		t.Errorf("expected 'results', got %q", path)
	}

	t.Setenv("GSEFETCH_RESULTS_PATH", "/tmp/out")
	if path := GetResultsPath(); path != "/tmp/out" {
		t.Errorf("expected '/tmp/out', got %q", path)
	}
}

func TestResultFiles(t *testing.T) {
	if got := MicroarrayFile("results", "GSE89408"); got != filepath.Join("results", "microarray", "GSE89408_experiment_summary.csv") {
		t.Errorf("unexpected microarray path %q", got)
	}
	if got := RNASeqFile("results", "GSE89408"); got != filepath.Join("results", "rnaseq", "GSE89408_rnaseq.csv") {
		t.Errorf("unexpected rnaseq path %q", got)
	}
}

func TestEnsureResultDirectories(t *testing.T) {
	root := filepath.Join(t.TempDir(), "results")

	if err := EnsureResultDirectories(root); err != nil {
		t.Fatalf("EnsureResultDirectories failed: %v", err)
	}

	for _, d := range []string{"microarray", "rnaseq"} {
		if _, err := os.Stat(filepath.Join(root, d)); os.IsNotExist(err) {
			t.Errorf("expected directory %q to be created", d)
		}
	}
}

func TestEnsureDirectories(t *testing.T) {
	dir := t.TempDir()

	t.Setenv("GSEFETCH_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("GSEFETCH_DATA_HOME", filepath.Join(dir, "data"))
	t.Setenv("GSEFETCH_STATE_HOME", filepath.Join(dir, "state"))

	if err := EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}

	for _, d := range []string{"config", "data", "state"} {
		if _, err := os.Stat(filepath.Join(dir, d)); os.IsNotExist(err) {
			t.Errorf("expected directory %q to be created", d)
		}
	}
}
