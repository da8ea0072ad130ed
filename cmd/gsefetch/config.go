package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/nishad/gsefetch/internal/config"
	"github.com/nishad/gsefetch/internal/paths"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage gsefetch configuration",
	Long:  `Show, create and locate the gsefetch configuration.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Long: `Display the configuration after the config file, GSEFETCH_* environment
variables and flags have been applied.`,
	RunE: runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize default configuration",
	Long: `Create a default configuration file at ~/.config/gsefetch/config.yaml
(or under GSEFETCH_CONFIG_HOME). If a config file already exists, use --force
to overwrite it.`,
	Example: `  gsefetch config init
  gsefetch config init --force`,
	RunE: runConfigInit,
}

var configPathsCmd = &cobra.Command{
	Use:   "paths",
	Short: "Show all active paths",
	RunE:  runConfigPaths,
}

var configForce bool

func init() {
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "Overwrite existing configuration")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathsCmd)
}

func configPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return config.GetConfigPath()
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	path := configPath()

	printInfo("Configuration")
	fmt.Println(colorize(colorGray, "────────────────────────────────────────"))
	fmt.Printf("%s %s\n", colorize(colorBold, "Config File:"), path)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		fmt.Println(colorize(colorYellow, "  (using defaults - no config file found)"))
	}
	fmt.Println()

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to format config: %w", err)
	}

	for _, line := range strings.Split(string(data), "\n") {
		switch {
		case line == "":
			fmt.Println()
		case strings.HasSuffix(line, ":") && !strings.Contains(line, " "):
			fmt.Println(colorize(colorBold, line))
		case strings.Contains(line, ": "):
			parts := strings.SplitN(line, ": ", 2)
			indent := len(line) - len(strings.TrimLeft(line, " "))
			value := parts[1]
			if strings.TrimSpace(parts[0]) == "api_key" && value != `""` {
				value = "********"
			}
			fmt.Printf("%s%s: %s\n",
				strings.Repeat(" ", indent),
				colorize(colorCyan, strings.TrimSpace(parts[0])),
				colorize(colorGreen, value))
		default:
			fmt.Println(line)
		}
	}

	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := cfgFile
	if path == "" {
		if err := paths.EnsureDirectories(); err != nil {
			return err
		}
		path = filepath.Join(paths.GetPaths().ConfigDir, "config.yaml")
	}

	if _, err := os.Stat(path); err == nil && !configForce {
		printWarning("Configuration already exists at %s", path)
		fmt.Println("Use --force to overwrite")
		return nil
	}

	if err := config.DefaultConfig().Save(path); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	printSuccess("Configuration created at %s", path)
	return nil
}

func runConfigPaths(cmd *cobra.Command, args []string) error {
	p := paths.GetPaths()

	printInfo("gsefetch Paths")
	fmt.Println(colorize(colorGray, "────────────────────────────────────────"))

	fmt.Printf("%s\n", colorize(colorBold, "Base Directories:"))
	fmt.Printf("  Config:   %s\n", colorize(colorCyan, p.ConfigDir))
	fmt.Printf("  Data:     %s\n", colorize(colorCyan, p.DataDir))
	fmt.Printf("  State:    %s\n", colorize(colorCyan, p.StateDir))

	fmt.Println()
	fmt.Printf("%s\n", colorize(colorBold, "Specific Paths:"))
	fmt.Printf("  Config file: %s\n", colorize(colorCyan, configPath()))
	fmt.Printf("  Results:     %s\n", colorize(colorCyan, cfg.Output.ResultsDirectory))
	fmt.Printf("  Database:    %s\n", colorize(colorCyan, cfg.Output.SQLitePath))

	fmt.Println()
	fmt.Printf("%s\n", colorize(colorBold, "Path Status:"))
	checks := []struct {
		name string
		path string
	}{
		{"Microarray", paths.MicroarrayFile(cfg.Output.ResultsDirectory, "")},
		{"RNA-seq", paths.RNASeqFile(cfg.Output.ResultsDirectory, "")},
		{"Database", cfg.Output.SQLitePath},
	}
	for _, check := range checks {
		target := check.path
		if check.name != "Database" {
			target = filepath.Dir(target)
		}
		if _, err := os.Stat(target); err == nil {
			fmt.Printf("  %-12s %s\n", check.name+":", colorize(colorGreen, "✓ exists"))
		} else {
			fmt.Printf("  %-12s %s\n", check.name+":", colorize(colorGray, "✗ not found"))
		}
	}

	return nil
}
