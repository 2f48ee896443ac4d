package server

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/meshforge/printquote/meshpipe"
)

// Config holds all printquote server configuration.
type Config struct {
	Listen        string     `yaml:"listen"`
	DBPath        string     `yaml:"db_path"`
	ScratchDir    string     `yaml:"scratch_dir"`
	MaxUploadMB   int64      `yaml:"max_upload_mb"`
	Pipeline      PipeConfig `yaml:"pipeline"`
	SMTP          SMTPConfig `yaml:"smtp"`
	BotWebhookURL string     `yaml:"bot_webhook_url"`
}

// PipeConfig controls mesh analysis and optimization.
type PipeConfig struct {
	DensityGCm3         float64 `yaml:"density_g_cm3"`
	OptimizeThresholdMB int64   `yaml:"optimize_threshold_mb"`
	TargetFaceRatio     float64 `yaml:"target_face_ratio"`
}

// SMTPConfig holds outbound mail settings. Email notifications are
// disabled when Host is empty.
type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

func (c *Config) defaults() {
	if c.Listen == "" {
		c.Listen = ":8080"
	}
	if c.DBPath == "" {
		c.DBPath = "printquote.db"
	}
	if c.MaxUploadMB <= 0 {
		c.MaxUploadMB = 200
	}
	if c.Pipeline.DensityGCm3 <= 0 {
		c.Pipeline.DensityGCm3 = meshpipe.DefaultDensity
	}
	if c.Pipeline.OptimizeThresholdMB <= 0 {
		c.Pipeline.OptimizeThresholdMB = meshpipe.DefaultOptimizeThreshold / (1 << 20)
	}
	if c.Pipeline.TargetFaceRatio <= 0 || c.Pipeline.TargetFaceRatio >= 1 {
		c.Pipeline.TargetFaceRatio = meshpipe.DefaultFaceRatio
	}
	if c.SMTP.Port <= 0 {
		c.SMTP.Port = 587
	}
}

// LoadConfigFile reads a YAML config file.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	cfg.defaults()
	return cfg, nil
}
