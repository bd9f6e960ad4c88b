package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sigreer/bootprobe/internal/logger"
	"gopkg.in/yaml.v3"
)

// DefaultEnvPath is where --set variables are stored unless configured otherwise
const DefaultEnvPath = "/var/lib/bootprobe/env.db"

// EnvPathVar overrides the variable store location
const EnvPathVar = "BOOTPROBE_ENV"

type Config struct {
	// Devices maps boot device names (hd0, cd0, ...) to host block devices or image files
	Devices map[string]Device `yaml:"devices,omitempty"`
	// Network declares extra network device names and their drivers
	Network map[string]Network `yaml:"network,omitempty"`
	Env     Env                `yaml:"env"`
	Logging logger.Config      `yaml:"logging"`
}

type Device struct {
	Path   string `yaml:"path"`
	Driver string `yaml:"driver,omitempty"`
}

type Network struct {
	Driver string `yaml:"driver"`
}

type Env struct {
	Path string `yaml:"path"`
}

// defaultConfig provides baseline settings; devices fall back to sysfs ordering
var defaultConfig = Config{
	Env: Env{Path: DefaultEnvPath},
}

// candidates lists the config files tried when no path is given
func candidates() []string {
	return []string{
		"/etc/bootprobe/config.yaml",
		filepath.Join(os.Getenv("HOME"), ".config/bootprobe/config.yaml"),
		"config.yaml",
	}
}

// Load reads the config at path. With an empty path the default locations
// are tried and a missing file yields the defaults.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		for _, c := range candidates() {
			if _, err := os.Stat(c); err == nil {
				path = c
				break
			}
		}
	}

	cfg := defaultConfig
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if explicit {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		} else if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	if cfg.Env.Path == "" {
		cfg.Env.Path = defaultConfig.Env.Path
	}
	if p := os.Getenv(EnvPathVar); p != "" {
		cfg.Env.Path = p
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	for name, d := range c.Devices {
		if name == "" {
			return fmt.Errorf("device map: empty device name")
		}
		if d.Path == "" {
			return fmt.Errorf("device map: %s has no path", name)
		}
	}
	for name, n := range c.Network {
		if n.Driver == "" {
			return fmt.Errorf("network map: %s has no driver", name)
		}
	}
	return nil
}
