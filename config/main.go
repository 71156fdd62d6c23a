package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultPort              = "3000"
	defaultOpenAIModel       = "gpt-4"
	defaultGeminiModel       = "gemini-2.5-flash"
	defaultVideoTimeout      = 3 * time.Minute
	defaultTranscriptTimeout = 1 * time.Minute

	ChatProviderOpenAI = "openai"
	ChatProviderGemini = "gemini"
)

type Config struct {
	Port       string          `yaml:"port"`
	Production bool            `yaml:"production"`
	StaticDir  string          `yaml:"static_dir"`
	CORS       CORSConfig      `yaml:"cors"`
	Functions  FunctionsConfig `yaml:"functions"`
	Chat       ChatConfig      `yaml:"chat"`
	Deepgram   DeepgramConfig  `yaml:"deepgram"`
}

type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// FunctionsConfig holds the remote analysis endpoints. An empty endpoint
// means "not configured".
type FunctionsConfig struct {
	// Video endpoint tried before falling back to mock data.
	VideoEndpoint string `yaml:"video_endpoint"`
	// Base URL; "/analyze_combined" is appended for the fallback route.
	TranscriptEndpoint string `yaml:"transcript_endpoint"`
	// Passthrough endpoints for the /api routes, which never use mock data.
	InsightsVideoEndpoint      string        `yaml:"insights_video_endpoint"`
	InsightsTranscriptEndpoint string        `yaml:"insights_transcript_endpoint"`
	VideoTimeout               time.Duration `yaml:"video_timeout"`
	TranscriptTimeout          time.Duration `yaml:"transcript_timeout"`
}

type ChatConfig struct {
	Provider      string `yaml:"provider"`
	OpenAIAPIKey  string `yaml:"openai_api_key"`
	OpenAIBaseURL string `yaml:"openai_base_url"`
	OpenAIModel   string `yaml:"openai_model"`
	GeminiAPIKey  string `yaml:"gemini_api_key"`
	GeminiModel   string `yaml:"gemini_model"`
}

type DeepgramConfig struct {
	APIKey string `yaml:"api_key"`
}

func (d DeepgramConfig) Enabled() bool {
	return d.APIKey != ""
}

// Load reads .env, an optional YAML file named by CONFIG_FILE, then applies
// environment overrides and defaults.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if configFile := os.Getenv("CONFIG_FILE"); configFile != "" {
		data, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", configFile, err)
		}
	}

	cfg.applyEnv(os.Getenv)
	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	setString := func(dst *string, keys ...string) {
		for _, key := range keys {
			if v := strings.TrimSpace(getenv(key)); v != "" {
				*dst = v
				return
			}
		}
	}

	setString(&c.Port, "PORT")
	setString(&c.StaticDir, "STATIC_DIR")
	if getenv("PRODUCTION") != "" {
		c.Production = true
	}
	if origins := getenv("ALLOWED_ORIGINS"); origins != "" {
		c.CORS.AllowedOrigins = splitList(origins)
	}

	setString(&c.Functions.VideoEndpoint, "VIDEO_FUNCTION_ENDPOINT", "FUNCTION_ENDPOINT")
	setString(&c.Functions.TranscriptEndpoint, "TRANSCRIPT_FUNCTION_ENDPOINT")
	setString(&c.Functions.InsightsVideoEndpoint, "INSIGHTS_VIDEO_ENDPOINT", "AZURE_FUNCTION_ENDPOINT")
	setString(&c.Functions.InsightsTranscriptEndpoint, "INSIGHTS_TRANSCRIPT_ENDPOINT")

	setString(&c.Chat.Provider, "CHAT_PROVIDER")
	setString(&c.Chat.OpenAIAPIKey, "OPENAI_API_KEY")
	setString(&c.Chat.OpenAIBaseURL, "OPENAI_BASE_URL")
	setString(&c.Chat.OpenAIModel, "OPENAI_MODEL")
	setString(&c.Chat.GeminiAPIKey, "GEMINI_SECRET_KEY", "GEMINI_API_KEY")
	setString(&c.Chat.GeminiModel, "GEMINI_MODEL")

	setString(&c.Deepgram.APIKey, "DEEPGRAM_API_KEY")
}

func (c *Config) applyDefaults() {
	if c.Port == "" {
		c.Port = defaultPort
	}
	if len(c.CORS.AllowedOrigins) == 0 {
		c.CORS.AllowedOrigins = []string{"*"}
	}
	if c.Functions.VideoTimeout <= 0 {
		c.Functions.VideoTimeout = defaultVideoTimeout
	}
	if c.Functions.TranscriptTimeout <= 0 {
		c.Functions.TranscriptTimeout = defaultTranscriptTimeout
	}
	if c.Chat.Provider == "" {
		c.Chat.Provider = ChatProviderOpenAI
		if c.Chat.OpenAIAPIKey == "" && c.Chat.GeminiAPIKey != "" {
			c.Chat.Provider = ChatProviderGemini
		}
	}
	c.Chat.Provider = strings.ToLower(c.Chat.Provider)
	if c.Chat.OpenAIModel == "" {
		c.Chat.OpenAIModel = defaultOpenAIModel
	}
	if c.Chat.GeminiModel == "" {
		c.Chat.GeminiModel = defaultGeminiModel
	}
}

func (c *Config) validate() error {
	if c.Chat.Provider != ChatProviderOpenAI && c.Chat.Provider != ChatProviderGemini {
		return fmt.Errorf("unknown chat provider %q (set CHAT_PROVIDER to openai or gemini)", c.Chat.Provider)
	}
	endpoints := map[string]string{
		"VIDEO_FUNCTION_ENDPOINT":      c.Functions.VideoEndpoint,
		"TRANSCRIPT_FUNCTION_ENDPOINT": c.Functions.TranscriptEndpoint,
		"INSIGHTS_VIDEO_ENDPOINT":      c.Functions.InsightsVideoEndpoint,
		"INSIGHTS_TRANSCRIPT_ENDPOINT": c.Functions.InsightsTranscriptEndpoint,
		"OPENAI_BASE_URL":              c.Chat.OpenAIBaseURL,
	}
	for name, raw := range endpoints {
		if raw == "" {
			continue
		}
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%s must be an absolute URL, got %q", name, raw)
		}
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
