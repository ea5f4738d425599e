package config

import (
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultConfigPath     = "config.yaml"
	defaultDataDir        = "./data"
	defaultOutputDir      = "./output"
	defaultArchiveDir     = "./archive"
	defaultProvider       = "groq"
	defaultGroqModel      = "llama-3.3-70b-versatile"
	defaultDeepSeekModel  = "deepseek-chat"
	defaultPromptsPath    = "prompts.yaml"
	defaultAspectRatio    = "9:16"
	defaultStyle          = "story"
	defaultRenderTimeout  = 30
	defaultUploadChunkMB  = 4
	defaultWorkerCount    = 4
	defaultQueueSize      = 64
	defaultRetentionDays  = 30
	defaultOAuthCallback  = "http://localhost:8080/callback"
	defaultGCSVideoPrefix = "videos"
)

type Config struct {
	GroqAPIKey           string
	DeepSeekAPIKey       string
	YouTubeClientID      string
	YouTubeClientSecret  string
	FacebookClientID     string
	FacebookClientSecret string
	GCSBucket            string

	Generator GeneratorConfig `yaml:"generator"`
	Data      DataConfig      `yaml:"data"`
	Render    RenderConfig    `yaml:"render"`
	Upload    UploadConfig    `yaml:"upload"`
	YouTube   YouTubeConfig   `yaml:"youtube"`
	GCS       GCSConfig       `yaml:"gcs"`
}

type GeneratorConfig struct {
	Provider      string `yaml:"provider"` // "groq" or "deepseek"
	GroqModel     string `yaml:"groq_model"`
	DeepSeekModel string `yaml:"deepseek_model"`
	PromptsPath   string `yaml:"prompts_path"`
	DefaultStyle  string `yaml:"default_style"`
	AspectRatio   string `yaml:"aspect_ratio"`
}

type DataConfig struct {
	Dir           string `yaml:"dir"`
	OutputDir     string `yaml:"output_dir"`
	ArchiveDir    string `yaml:"archive_dir"`
	RetentionDays int    `yaml:"retention_days"`
}

type RenderConfig struct {
	Command        []string `yaml:"command"`
	WorkDir        string   `yaml:"work_dir"`
	TimeoutMinutes int      `yaml:"timeout_minutes"`
}

type UploadConfig struct {
	ChunkSizeMB int `yaml:"chunk_size_mb"`
	Workers     int `yaml:"workers"`
	QueueSize   int `yaml:"queue_size"`
}

type YouTubeConfig struct {
	RedirectURL string `yaml:"redirect_url"`
}

type GCSConfig struct {
	Enabled     bool   `yaml:"enabled"`
	VideoPrefix string `yaml:"video_prefix"`
}

func Load() *Config {
	return LoadFrom(defaultConfigPath)
}

func LoadFrom(path string) *Config {
	if err := godotenv.Load(); err != nil {
		slog.Warn("No .env file found, relying on environment variables")
	}

	cfg := &Config{
		GroqAPIKey:           os.Getenv("GROQ_API_KEY"),
		DeepSeekAPIKey:       os.Getenv("DEEPSEEK_API_KEY"),
		YouTubeClientID:      os.Getenv("YOUTUBE_CLIENT_ID"),
		YouTubeClientSecret:  os.Getenv("YOUTUBE_CLIENT_SECRET"),
		FacebookClientID:     os.Getenv("FACEBOOK_CLIENT_ID"),
		FacebookClientSecret: os.Getenv("FACEBOOK_CLIENT_SECRET"),
		GCSBucket:            os.Getenv("GCS_BUCKET"),
	}

	loadYAMLConfig(cfg, path)
	applyDefaults(cfg)

	return cfg
}

func loadYAMLConfig(cfg *Config, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		slog.Warn("No config.yaml found, using defaults")
		return
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		slog.Error("Failed to parse config.yaml", "error", err)
	}
}

func applyDefaults(cfg *Config) {
	applyGeneratorDefaults(cfg)
	applyDataDefaults(cfg)
	applyRenderDefaults(cfg)
	applyUploadDefaults(cfg)
	applyYouTubeDefaults(cfg)
	applyGCSDefaults(cfg)
}

func applyGeneratorDefaults(cfg *Config) {
	if cfg.Generator.Provider == "" {
		cfg.Generator.Provider = defaultProvider
	}
	if cfg.Generator.GroqModel == "" {
		cfg.Generator.GroqModel = defaultGroqModel
	}
	if cfg.Generator.DeepSeekModel == "" {
		cfg.Generator.DeepSeekModel = defaultDeepSeekModel
	}
	if cfg.Generator.PromptsPath == "" {
		cfg.Generator.PromptsPath = defaultPromptsPath
	}
	if cfg.Generator.DefaultStyle == "" {
		cfg.Generator.DefaultStyle = defaultStyle
	}
	if cfg.Generator.AspectRatio == "" {
		cfg.Generator.AspectRatio = defaultAspectRatio
	}
}

func applyDataDefaults(cfg *Config) {
	if cfg.Data.Dir == "" {
		cfg.Data.Dir = defaultDataDir
	}
	if cfg.Data.OutputDir == "" {
		cfg.Data.OutputDir = defaultOutputDir
	}
	if cfg.Data.ArchiveDir == "" {
		cfg.Data.ArchiveDir = defaultArchiveDir
	}
	if cfg.Data.RetentionDays == 0 {
		cfg.Data.RetentionDays = defaultRetentionDays
	}
}

func applyRenderDefaults(cfg *Config) {
	if cfg.Render.TimeoutMinutes == 0 {
		cfg.Render.TimeoutMinutes = defaultRenderTimeout
	}
}

func applyUploadDefaults(cfg *Config) {
	if cfg.Upload.ChunkSizeMB <= 0 {
		cfg.Upload.ChunkSizeMB = defaultUploadChunkMB
	}
	if cfg.Upload.Workers <= 0 {
		cfg.Upload.Workers = defaultWorkerCount
	}
	if cfg.Upload.QueueSize <= 0 {
		cfg.Upload.QueueSize = defaultQueueSize
	}
}

func applyYouTubeDefaults(cfg *Config) {
	if cfg.YouTube.RedirectURL == "" {
		cfg.YouTube.RedirectURL = defaultOAuthCallback
	}
}

func applyGCSDefaults(cfg *Config) {
	if cfg.GCS.VideoPrefix == "" {
		cfg.GCS.VideoPrefix = defaultGCSVideoPrefix
	}
}

// RenderTimeout is the configured render wall clock limit.
func (c *Config) RenderTimeout() time.Duration {
	return time.Duration(c.Render.TimeoutMinutes) * time.Minute
}

// ChunkSize is the upload transfer chunk size in bytes, never less
// than the default. A non-positive size would break the chunked
// transfer loops downstream.
func (c *Config) ChunkSize() int {
	mb := c.Upload.ChunkSizeMB
	if mb <= 0 {
		mb = defaultUploadChunkMB
	}
	return mb * 1024 * 1024
}
