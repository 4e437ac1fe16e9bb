package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.MountRoot != "/mnt/bootmend/mountpoints" {
		t.Errorf("MountRoot = %q", cfg.MountRoot)
	}
	if cfg.PingTarget != "208.67.222.222" {
		t.Errorf("PingTarget = %q", cfg.PingTarget)
	}
	if cfg.DatabasePath != "" {
		t.Errorf("DatabasePath = %q, want empty so the db package picks its default", cfg.DatabasePath)
	}
	if cfg.LiveDisk != nil {
		t.Errorf("LiveDisk = %v, want unset", *cfg.LiveDisk)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `mount_root: /tmp/probe
ping_target: 192.0.2.1
database_path: /tmp/history.db
live_disk: true
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.MountRoot != "/tmp/probe" || cfg.PingTarget != "192.0.2.1" || cfg.DatabasePath != "/tmp/history.db" {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if cfg.LiveDisk == nil || !*cfg.LiveDisk {
		t.Error("LiveDisk override not applied")
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("ping_target: 192.0.2.1\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.MountRoot != "/mnt/bootmend/mountpoints" {
		t.Errorf("MountRoot = %q, want the default", cfg.MountRoot)
	}
	if cfg.PingTarget != "192.0.2.1" {
		t.Errorf("PingTarget = %q", cfg.PingTarget)
	}
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("mount_root: [not: valid\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected an error for malformed yaml")
	}
}
