package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Provider selects the chat adapter.
type Provider string

const (
	ProviderMock   Provider = "mock"
	ProviderOpenAI Provider = "openai" // any OpenAI-compatible endpoint, Hugging Face router by default
	ProviderGemini Provider = "gemini"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Scraper struct {
		BaseURL        string `yaml:"base_url"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
	} `yaml:"scraper"`
	LLM struct {
		Provider    Provider `yaml:"provider"`
		Model       string   `yaml:"model"`
		APIKey      string   `yaml:"api_key"`
		BaseURL     string   `yaml:"base_url"`
		HFProvider  string   `yaml:"hf_provider"`
		GCPProject  string   `yaml:"gcp_project"`
		GCPLocation string   `yaml:"gcp_location"`
		MaxTokens   int      `yaml:"max_tokens"`
		Temperature float64  `yaml:"temperature"`
	} `yaml:"llm"`
	Generation struct {
		HistoryWindow int `yaml:"history_window"`
	} `yaml:"generation"`
	Storage struct {
		Backend    string `yaml:"backend"` // "memory", "sqlite" or "firestore"
		SQLitePath string `yaml:"sqlite_path"`
		GCPProject string `yaml:"gcp_project"`
	} `yaml:"storage"`
	Debug struct {
		Enabled bool   `yaml:"enabled"`
		Dir     string `yaml:"dir"`
	} `yaml:"debug"`
	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

// Load reads defaults, then the optional YAML file at path, then environment
// overrides (a .env file is loaded first when present).
func Load(path string) (*Config, error) {
	_ = godotenv.Load() // optional

	cfg := defaultConfig()
	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(b, &cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		case !errors.Is(err, os.ErrNotExist):
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	applyEnvOverrides(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func defaultConfig() Config {
	var cfg Config
	cfg.Server.Port = "8080"
	cfg.Scraper.BaseURL = "http://localhost:8000"
	cfg.Scraper.TimeoutSeconds = 60
	cfg.LLM.Provider = ProviderMock
	cfg.LLM.Model = "meta-llama/Llama-3-8B-Instruct"
	cfg.LLM.BaseURL = "https://router.huggingface.co/v1"
	cfg.LLM.HFProvider = "auto"
	cfg.LLM.GCPLocation = "us-central1"
	cfg.LLM.MaxTokens = 500
	cfg.LLM.Temperature = 0.7
	cfg.Generation.HistoryWindow = 5
	cfg.Storage.Backend = "memory"
	cfg.Storage.SQLitePath = "linkpitch.db"
	cfg.Debug.Enabled = true
	cfg.Debug.Dir = "tests/generated-messages"
	cfg.Logging.Level = "info"
	return cfg
}

func applyEnvOverrides(cfg *Config) {
	setString(&cfg.Server.Port, "LINKPITCH_PORT")
	setString(&cfg.Scraper.BaseURL, "SCRAPER_API_URL")
	setInt(&cfg.Scraper.TimeoutSeconds, "SCRAPER_TIMEOUT_SECONDS")

	if v := os.Getenv("LINKPITCH_LLM_PROVIDER"); v != "" {
		cfg.LLM.Provider = Provider(strings.ToLower(v))
	}
	setString(&cfg.LLM.Model, "HF_MODEL")
	setString(&cfg.LLM.APIKey, "HF_API_KEY")
	setString(&cfg.LLM.BaseURL, "LINKPITCH_LLM_BASE_URL")
	setString(&cfg.LLM.HFProvider, "HF_PROVIDER")
	setString(&cfg.LLM.GCPProject, "LINKPITCH_GCP_PROJECT")
	setString(&cfg.LLM.GCPLocation, "LINKPITCH_GCP_LOCATION")
	if cfg.LLM.Provider == ProviderGemini {
		setString(&cfg.LLM.APIKey, "GEMINI_API_KEY")
		setString(&cfg.LLM.Model, "LINKPITCH_MODEL_NAME")
	}

	setInt(&cfg.Generation.HistoryWindow, "LINKPITCH_HISTORY_WINDOW")

	setString(&cfg.Storage.Backend, "LINKPITCH_STORAGE_BACKEND")
	setString(&cfg.Storage.SQLitePath, "LINKPITCH_DB_PATH")
	setString(&cfg.Storage.GCPProject, "LINKPITCH_GCP_PROJECT")

	if v := os.Getenv("LINKPITCH_DEBUG"); v != "" {
		cfg.Debug.Enabled = parseBool(v)
	}
	setString(&cfg.Debug.Dir, "LINKPITCH_DEBUG_DIR")
	setString(&cfg.Logging.Level, "LINKPITCH_LOG_LEVEL")
}

func validate(cfg *Config) error {
	switch cfg.LLM.Provider {
	case ProviderMock, ProviderOpenAI, ProviderGemini:
	default:
		return fmt.Errorf("llm.provider %q is not one of mock, openai, gemini", cfg.LLM.Provider)
	}
	switch cfg.Storage.Backend {
	case "memory", "sqlite":
	case "firestore":
		if cfg.Storage.GCPProject == "" {
			return errors.New("storage.gcp_project is required for the firestore backend")
		}
	default:
		return fmt.Errorf("storage.backend %q is not one of memory, sqlite, firestore", cfg.Storage.Backend)
	}
	if cfg.Scraper.BaseURL == "" {
		return errors.New("scraper.base_url is required")
	}
	if cfg.Generation.HistoryWindow <= 0 {
		return errors.New("generation.history_window must be > 0")
	}
	if cfg.LLM.MaxTokens <= 0 {
		return errors.New("llm.max_tokens must be > 0")
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func parseBool(v string) bool {
	switch strings.ToLower(v) {
	case "1", "true", "yes":
		return true
	}
	return false
}
