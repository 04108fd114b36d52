package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

type Config struct {
	DataDir       string `json:"data_dir"`
	LogLevel      string `json:"log_level"`
	HTTPAddr      string `json:"http_addr"`
	MaxConcurrent int    `json:"max_concurrent"`
	Resolve       struct {
		MaxRetries  int `json:"max_retries"`
		BaseDelayMS int `json:"base_delay_ms"`
	} `json:"resolve"`
	Responder struct {
		Provider         string  `json:"provider"`
		BaseURL          string  `json:"base_url"`
		APIKey           string  `json:"api_key"`
		Model            string  `json:"model"`
		MaxTokens        int     `json:"max_tokens"`
		Temperature      float32 `json:"temperature"`
		MaxContextTokens int     `json:"max_context_tokens"`
		OutputReserve    int     `json:"output_reserve"`
	} `json:"responder"`
	Layout struct {
		InputMinHeight    int `json:"input_min_height"`
		InputMaxHeight    int `json:"input_max_height"`
		FABOverlap        int `json:"fab_overlap"`
		NavHeight         int `json:"nav_height"`
		KeyboardThreshold int `json:"keyboard_threshold"`
	} `json:"layout"`
}

func Load(path string) (*Config, error) {
	cfg := &Config{
		DataDir:       filepath.Join(os.Getenv("HOME"), ".tradesman-assist"),
		MaxConcurrent: 2,
	}
	cfg.LogLevel = "info"
	cfg.HTTPAddr = ":8787"
	cfg.Resolve.MaxRetries = 3
	cfg.Resolve.BaseDelayMS = 100
	cfg.Responder.Provider = "simulated"
	cfg.Responder.BaseURL = "https://api.openai.com/v1"
	cfg.Responder.Model = "gpt-4o-mini"
	cfg.Responder.MaxTokens = 1000
	cfg.Responder.Temperature = 0.7
	cfg.Responder.MaxContextTokens = 128000
	cfg.Responder.OutputReserve = 4096
	cfg.Layout.InputMinHeight = 56
	cfg.Layout.InputMaxHeight = 180
	cfg.Layout.FABOverlap = 24
	cfg.Layout.NavHeight = 64
	cfg.Layout.KeyboardThreshold = 150

	// Load from file if exists, otherwise write defaults
	if _, err := os.Stat(path); err == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	} else if os.IsNotExist(err) {
		if err := writeDefaults(path, cfg); err != nil {
			return nil, err
		}
	}

	// Override from env (highest precedence)
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		cfg.Responder.APIKey = apiKey
	}
	if baseURL := os.Getenv("OPENAI_BASE_URL"); baseURL != "" {
		cfg.Responder.BaseURL = baseURL
	}

	return cfg, nil
}

func writeDefaults(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal default config: %w", err)
	}
	data = append(data, '\n')
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("write default config: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename default config: %w", err)
	}
	return nil
}
