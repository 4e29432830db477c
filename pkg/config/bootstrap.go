package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// BootstrapConfig holds the configuration loaded from controller_config.yaml
type BootstrapConfig struct {
	Logging LoggingConfig `yaml:"logging"`
	Server  ServerConfig  `yaml:"server"`
	ZeroMQ  ZeroMQConfig  `yaml:"zeromq"`
	Control ControlConfig `yaml:"control"`
	Data    DataConfig    `yaml:"data"`
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogPath string `yaml:"log_path,omitempty"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	HTTPPort int `yaml:"http_port"`
}

// ZeroMQConfig holds the outbound command channel settings
type ZeroMQConfig struct {
	PublishBindAddress string `yaml:"publish_bind_address"`
	CommandTopic       string `yaml:"command_topic"`
}

// ControlConfig holds the control loop and manual input settings
type ControlConfig struct {
	RateHz      float64 `yaml:"rate_hz"`
	LinearSpeed float64 `yaml:"linear_speed"`
	AngularRate float64 `yaml:"angular_rate"`
	// ResumeInterrupted selects whether a manually overridden scripted
	// motion keeps its elapsed progress and resumes once the operator
	// releases the keys, or is cancelled outright.
	ResumeInterrupted bool `yaml:"resume_interrupted"`
}

// DataConfig holds data directory settings. CommandLogFile is the
// SQLite file the per-tick command recorder writes to; empty disables
// recording.
type DataConfig struct {
	Directory      string `yaml:"directory"`
	CommandLogFile string `yaml:"command_log_file,omitempty"`
}

// Dt returns the fixed control timestep in seconds.
func (c ControlConfig) Dt() float64 {
	return 1.0 / c.RateHz
}

// LoadBootstrapConfig loads the bootstrap configuration from controller_config.yaml
func LoadBootstrapConfig(configDir string) (*BootstrapConfig, error) {
	bootstrapConfigPath := filepath.Join(configDir, "controller_config.yaml")

	data, err := os.ReadFile(bootstrapConfigPath)
	if err != nil {
		return nil, fmt.Errorf("error reading bootstrap config file '%s': %w", bootstrapConfigPath, err)
	}

	var bootstrapCfg BootstrapConfig
	if err := yaml.Unmarshal(data, &bootstrapCfg); err != nil {
		return nil, fmt.Errorf("error parsing bootstrap config file '%s': %w", bootstrapConfigPath, err)
	}

	if bootstrapCfg.ZeroMQ.PublishBindAddress == "" {
		return nil, fmt.Errorf("missing required field in bootstrap config: zeromq.publish_bind_address")
	}
	if bootstrapCfg.ZeroMQ.CommandTopic == "" {
		return nil, fmt.Errorf("missing required field in bootstrap config: zeromq.command_topic")
	}
	if bootstrapCfg.Control.RateHz <= 0 {
		return nil, fmt.Errorf("invalid field in bootstrap config: control.rate_hz must be > 0")
	}
	if bootstrapCfg.Control.LinearSpeed <= 0 {
		return nil, fmt.Errorf("invalid field in bootstrap config: control.linear_speed must be > 0")
	}
	if bootstrapCfg.Control.AngularRate <= 0 {
		return nil, fmt.Errorf("invalid field in bootstrap config: control.angular_rate must be > 0")
	}
	if bootstrapCfg.Data.Directory == "" {
		return nil, fmt.Errorf("missing required field in bootstrap config: data.directory")
	}

	return &bootstrapCfg, nil
}
