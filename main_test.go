package main

import (
	"testing"
)

func TestVersionCommand(t *testing.T) {
	if versionCmd == nil {
		t.Fatal("versionCmd is nil")
	}

	if versionCmd.Use != "version" {
		t.Errorf("Unexpected Use: %s", versionCmd.Use)
	}

	if versionCmd.Short != "Print version information" {
		t.Errorf("Unexpected Short: %s", versionCmd.Short)
	}
}

func TestRootCommandHasSubcommands(t *testing.T) {
	expected := []string{"board", "card", "funnel", "approval", "db", "metrics", "auth", "version"}

	for _, name := range expected {
		found := false
		for _, sub := range rootCmd.Commands() {
			if sub.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("root command missing subcommand %q", name)
		}
	}
}

func TestGlobalFlags(t *testing.T) {
	for _, flag := range []string{"actor", "output", "debug"} {
		if rootCmd.PersistentFlags().Lookup(flag) == nil {
			t.Errorf("--%s flag not found on root command", flag)
		}
	}
}

func TestLoadConfigAppliesFlagOverrides(t *testing.T) {
	t.Setenv("VENDA_CONFIG_DIR", t.TempDir())

	actorID = "seller-42"
	outputFormat = "json"
	debug = true
	defer func() {
		actorID = ""
		outputFormat = ""
		debug = false
	}()

	cfg, err := deps.LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Actor.ID != "seller-42" {
		t.Errorf("Actor.ID = %v, want seller-42", cfg.Actor.ID)
	}
	if string(cfg.OutputFormat) != "json" {
		t.Errorf("OutputFormat = %v, want json", cfg.OutputFormat)
	}
	if !cfg.Debug {
		t.Error("Debug should be true")
	}
}

func TestLoadConfigRejectsBadFormatFlag(t *testing.T) {
	t.Setenv("VENDA_CONFIG_DIR", t.TempDir())

	outputFormat = "xml"
	defer func() { outputFormat = "" }()

	if _, err := deps.LoadConfig(); err == nil {
		t.Error("LoadConfig() should reject an invalid --output value")
	}
}
