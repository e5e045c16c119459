package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
)

// Config aggregates every subsystem's configuration.
type Config struct {
	AI       AIConfig
	Calendar CalendarConfig
	Speech   SpeechConfig
	Chat     ChatConfig
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	ai, err := loadAIConfig()
	if err != nil {
		return nil, err
	}

	calendarCfg, err := loadCalendarConfig()
	if err != nil {
		return nil, err
	}

	speech, err := loadSpeechConfig()
	if err != nil {
		return nil, err
	}

	chatCfg, err := loadChatConfig()
	if err != nil {
		return nil, err
	}

	return &Config{AI: ai, Calendar: calendarCfg, Speech: speech, Chat: chatCfg}, nil
}

// AIConfig describes the chat model used for all LLM calls: the turn
// selector, the planning role, and the tool-calling calendar role.
type AIConfig struct {
	APIKey      string
	AccessKey   string
	SecretKey   string
	Model       string
	BaseURL     string
	Region      string
	Temperature *float64
	TopP        *float64
	MaxTokens   *int
}

// Enabled reports whether the required model credentials are present.
func (c AIConfig) Enabled() bool {
	return c.Model != "" && (c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != ""))
}

// NewChatModel builds a model instance from this configuration.
func (c AIConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("model credentials missing: set ARK_API_KEY + ARK_MODEL or an AK/SK pair")
	}

	var temperature *float32
	if c.Temperature != nil {
		val := float32(*c.Temperature)
		temperature = &val
	}

	var topP *float32
	if c.TopP != nil {
		val := float32(*c.TopP)
		topP = &val
	}

	cfg := &ark.ChatModelConfig{
		BaseURL:     c.BaseURL,
		Region:      c.Region,
		APIKey:      c.APIKey,
		AccessKey:   c.AccessKey,
		SecretKey:   c.SecretKey,
		Model:       c.Model,
		MaxTokens:   c.MaxTokens,
		Temperature: temperature,
		TopP:        topP,
	}

	return ark.NewChatModel(ctx, cfg)
}

func loadAIConfig() (AIConfig, error) {
	temperature, err := parseOptionalFloatEnv("ARK_TEMPERATURE")
	if err != nil {
		return AIConfig{}, err
	}

	topP, err := parseOptionalFloatEnv("ARK_TOP_P")
	if err != nil {
		return AIConfig{}, err
	}

	maxTokens, err := parseOptionalIntEnv("ARK_MAX_TOKENS")
	if err != nil {
		return AIConfig{}, err
	}

	return AIConfig{
		APIKey:      strings.TrimSpace(os.Getenv("ARK_API_KEY")),
		AccessKey:   strings.TrimSpace(os.Getenv("ARK_ACCESS_KEY")),
		SecretKey:   strings.TrimSpace(os.Getenv("ARK_SECRET_KEY")),
		Model:       strings.TrimSpace(os.Getenv("ARK_MODEL")),
		BaseURL:     getEnvOrDefault("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
		Region:      getEnvOrDefault("ARK_REGION", "cn-beijing"),
		Temperature: temperature,
		TopP:        topP,
		MaxTokens:   maxTokens,
	}, nil
}

// CalendarConfig describes the Google Calendar OAuth application and
// where the user token is persisted.
type CalendarConfig struct {
	ClientID     string
	ClientSecret string
	TokenFile    string
	CalendarID   string
	CallbackAddr string
}

// Enabled reports whether the OAuth application credentials are set.
func (c CalendarConfig) Enabled() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

func loadCalendarConfig() (CalendarConfig, error) {
	return CalendarConfig{
		ClientID:     strings.TrimSpace(os.Getenv("GOOGLE_CLIENT_ID")),
		ClientSecret: strings.TrimSpace(os.Getenv("GOOGLE_CLIENT_SECRET")),
		TokenFile:    getEnvOrDefault("GOOGLE_TOKEN_FILE", "token.json"),
		CalendarID:   getEnvOrDefault("GOOGLE_CALENDAR_ID", "primary"),
		CallbackAddr: getEnvOrDefault("GOOGLE_OAUTH_CALLBACK_ADDR", "localhost:8912"),
	}, nil
}

// SpeechConfig describes the optional text-to-speech / transcription
// provider (an OpenAI-compatible audio API).
type SpeechConfig struct {
	BaseURL   string
	APIKey    string
	TTSModel  string
	TTSVoice  string
	ASRModel  string
	OutputDir string
	Timeout   int
	Enabled   bool
}

func loadSpeechConfig() (SpeechConfig, error) {
	timeout, err := parseOptionalIntEnv("SPEECH_TIMEOUT")
	if err != nil {
		return SpeechConfig{}, err
	}
	timeoutSeconds := 30
	if timeout != nil {
		timeoutSeconds = *timeout
	}

	baseURL := strings.TrimSpace(os.Getenv("SPEECH_BASE_URL"))
	apiKey := strings.TrimSpace(os.Getenv("SPEECH_API_KEY"))
	if apiKey == "" {
		apiKey = strings.TrimSpace(os.Getenv("ARK_API_KEY"))
	}

	return SpeechConfig{
		BaseURL:   baseURL,
		APIKey:    apiKey,
		TTSModel:  getEnvOrDefault("SPEECH_TTS_MODEL", "tts-1"),
		TTSVoice:  getEnvOrDefault("SPEECH_TTS_VOICE", "alloy"),
		ASRModel:  getEnvOrDefault("SPEECH_ASR_MODEL", "whisper-1"),
		OutputDir: getEnvOrDefault("SPEECH_OUTPUT_DIR", "speech-out"),
		Timeout:   timeoutSeconds,
		Enabled:   baseURL != "" && apiKey != "",
	}, nil
}

// ChatConfig bounds the group chat loop.
type ChatConfig struct {
	MaxMessages int
}

func loadChatConfig() (ChatConfig, error) {
	maxMessages := 40
	if override, err := parseOptionalIntEnv("CHAT_MAX_MESSAGES"); err != nil {
		return ChatConfig{}, err
	} else if override != nil {
		if *override < 1 {
			return ChatConfig{}, fmt.Errorf("CHAT_MAX_MESSAGES must be positive, got %d", *override)
		}
		maxMessages = *override
	}

	return ChatConfig{MaxMessages: maxMessages}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
