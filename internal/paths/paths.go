package paths

import (
	"fmt"
	"os"
	"path/filepath"
)

type Paths struct {
	ConfigDir string
	DataDir   string
	StateDir  string
}

// GetPaths returns all base paths respecting environment variables
func GetPaths() Paths {
	return Paths{
		ConfigDir: getDir("GSEFETCH_CONFIG_HOME", "XDG_CONFIG_HOME", ".config", "gsefetch"),
		DataDir:   getDir("GSEFETCH_DATA_HOME", "XDG_DATA_HOME", ".local/share", "gsefetch"),
		StateDir:  getDir("GSEFETCH_STATE_HOME", "XDG_STATE_HOME", ".local/state", "gsefetch"),
	}
}

func getDir(appEnv, xdgEnv, defaultBase, appName string) string {
	// 1. Check app-specific env
	if dir := os.Getenv(appEnv); dir != "" {
		return dir
	}

	// 2. Check XDG env
	if xdgBase := os.Getenv(xdgEnv); xdgBase != "" {
		return filepath.Join(xdgBase, appName)
	}

	// 3. Use default
	home, _ := os.UserHomeDir()
	return filepath.Join(home, defaultBase, appName)
}

// GetDatabasePath returns the default path of the SQLite sink
func GetDatabasePath() string {
	if path := os.Getenv("GSEFETCH_DB_PATH"); path != "" {
		return path
	}
	return filepath.Join(GetPaths().DataDir, "gsefetch.db")
}

// GetResultsPath returns the root of the CSV output tree.
// Relative by default so a run writes next to where it was started.
func GetResultsPath() string {
	if path := os.Getenv("GSEFETCH_RESULTS_PATH"); path != "" {
		return path
	}
	return "results"
}

// MicroarrayFile returns <root>/microarray/<accession>_experiment_summary.csv
func MicroarrayFile(root, accession string) string {
	return filepath.Join(root, "microarray", accession+"_experiment_summary.csv")
}

// RNASeqFile returns <root>/rnaseq/<accession>_rnaseq.csv
func RNASeqFile(root, accession string) string {
	return filepath.Join(root, "rnaseq", accession+"_rnaseq.csv")
}

// EnsureResultDirectories creates the microarray and rnaseq directories under root
func EnsureResultDirectories(root string) error {
	for _, dir := range []string{filepath.Join(root, "microarray"), filepath.Join(root, "rnaseq")} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// EnsureDirectories creates all necessary directories
func EnsureDirectories() error {
	paths := GetPaths()
	dirs := []string{
		paths.ConfigDir,
		paths.DataDir,
		paths.StateDir,
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}
