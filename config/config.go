package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	LogLevel int `yaml:"log_level"`

	Server   ServerConfig   `yaml:"server"`
	Storage  StorageConfig  `yaml:"storage"`
	Database DatabaseConfig `yaml:"database"`
	Tools    ToolsConfig    `yaml:"tools"`
}

type ServerConfig struct {
	Port string `yaml:"port"`

	// Origin allowed to call the API; "*" during development.
	CORSOrigin string `yaml:"cors_origin"`
}

type StorageConfig struct {
	// Directory preview files are written to and served from.
	AudioDir string `yaml:"audio_dir"`
}

type DatabaseConfig struct {
	// Driver is "mysql" or "memory".
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

type ToolsConfig struct {
	YtDlpPath  string `yaml:"ytdlp_path"`
	FFmpegPath string `yaml:"ffmpeg_path"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config *Config

	err = yaml.Unmarshal(data, &config)
	if err != nil {
		return nil, err
	}

	// Set defaults if not provided
	if config.Server.Port == "" {
		config.Server.Port = "8020"
	}

	if config.Server.CORSOrigin == "" {
		config.Server.CORSOrigin = "*"
	}

	if config.Storage.AudioDir == "" {
		config.Storage.AudioDir = "audio"
	}

	if config.Database.Driver == "" {
		config.Database.Driver = "memory"
	}

	if config.Tools.YtDlpPath == "" {
		config.Tools.YtDlpPath = "yt-dlp"
	}

	if config.Tools.FFmpegPath == "" {
		config.Tools.FFmpegPath = "ffmpeg"
	}

	return config, nil
}
