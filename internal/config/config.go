package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// MountRoot is the base directory for temporary mount points created
	// while probing unmounted partitions.
	MountRoot string `yaml:"mount_root,omitempty"`

	// PingTarget is the host pinged by the connectivity gate.
	PingTarget string `yaml:"ping_target,omitempty"`

	// DatabasePath overrides the scan-history database location.
	DatabasePath string `yaml:"database_path,omitempty"`

	// LiveDisk overrides live-media detection when set.
	LiveDisk *bool `yaml:"live_disk,omitempty"`
}

var defaultConfig = Config{
	MountRoot:  "/mnt/bootmend/mountpoints",
	PingTarget: "208.67.222.222",
}

// Load reads the config from path, or from the default locations when path is
// empty. A missing file is not an error; defaults apply.
func Load(path string) (*Config, error) {
	if path == "" {
		candidates := []string{
			"/etc/bootmend/config.yaml",
			filepath.Join(os.Getenv("HOME"), ".config/bootmend/config.yaml"),
			"config.yaml",
		}
		for _, c := range candidates {
			if _, err := os.Stat(c); err == nil {
				path = c
				break
			}
		}
	}

	cfg := defaultConfig
	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, err
			}
		}
	}

	if cfg.MountRoot == "" {
		cfg.MountRoot = defaultConfig.MountRoot
	}
	if cfg.PingTarget == "" {
		cfg.PingTarget = defaultConfig.PingTarget
	}

	return &cfg, nil
}
