package config

import (
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"ARK_API_KEY", "ARK_ACCESS_KEY", "ARK_SECRET_KEY", "ARK_MODEL",
		"ARK_BASE_URL", "ARK_REGION", "ARK_TEMPERATURE", "ARK_TOP_P", "ARK_MAX_TOKENS",
		"GOOGLE_CLIENT_ID", "GOOGLE_CLIENT_SECRET", "GOOGLE_TOKEN_FILE",
		"GOOGLE_CALENDAR_ID", "GOOGLE_OAUTH_CALLBACK_ADDR",
		"SPEECH_BASE_URL", "SPEECH_API_KEY", "SPEECH_TIMEOUT",
		"CHAT_MAX_MESSAGES",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}

	if cfg.AI.Enabled() {
		t.Fatal("AI must be disabled without credentials")
	}
	if cfg.Calendar.Enabled() {
		t.Fatal("calendar must be disabled without OAuth credentials")
	}
	if cfg.Speech.Enabled {
		t.Fatal("speech must be disabled without a base URL")
	}

	if cfg.Calendar.TokenFile != "token.json" {
		t.Fatalf("unexpected token file default: %s", cfg.Calendar.TokenFile)
	}
	if cfg.Calendar.CalendarID != "primary" {
		t.Fatalf("unexpected calendar id default: %s", cfg.Calendar.CalendarID)
	}
	if cfg.Calendar.CallbackAddr != "localhost:8912" {
		t.Fatalf("unexpected callback addr default: %s", cfg.Calendar.CallbackAddr)
	}
	if cfg.Speech.TTSModel != "tts-1" || cfg.Speech.TTSVoice != "alloy" || cfg.Speech.ASRModel != "whisper-1" {
		t.Fatalf("unexpected speech model defaults: %+v", cfg.Speech)
	}
	if cfg.Speech.Timeout != 30 {
		t.Fatalf("unexpected speech timeout default: %d", cfg.Speech.Timeout)
	}
	if cfg.Chat.MaxMessages != 40 {
		t.Fatalf("unexpected max messages default: %d", cfg.Chat.MaxMessages)
	}
}

func TestLoadAIEnabledWithAPIKey(t *testing.T) {
	t.Setenv("ARK_API_KEY", "test-key")
	t.Setenv("ARK_MODEL", "test-model")
	t.Setenv("ARK_ACCESS_KEY", "")
	t.Setenv("ARK_SECRET_KEY", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}
	if !cfg.AI.Enabled() {
		t.Fatal("AI must be enabled with api key and model")
	}
}

func TestLoadAIEnabledWithAKSKPair(t *testing.T) {
	t.Setenv("ARK_API_KEY", "")
	t.Setenv("ARK_MODEL", "test-model")
	t.Setenv("ARK_ACCESS_KEY", "ak")
	t.Setenv("ARK_SECRET_KEY", "sk")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}
	if !cfg.AI.Enabled() {
		t.Fatal("AI must be enabled with an AK/SK pair and model")
	}
}

func TestLoadOptionalModelParameters(t *testing.T) {
	t.Setenv("ARK_TEMPERATURE", "0.7")
	t.Setenv("ARK_TOP_P", "0.9")
	t.Setenv("ARK_MAX_TOKENS", "2048")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}
	if cfg.AI.Temperature == nil || *cfg.AI.Temperature != 0.7 {
		t.Fatalf("unexpected temperature: %v", cfg.AI.Temperature)
	}
	if cfg.AI.TopP == nil || *cfg.AI.TopP != 0.9 {
		t.Fatalf("unexpected top_p: %v", cfg.AI.TopP)
	}
	if cfg.AI.MaxTokens == nil || *cfg.AI.MaxTokens != 2048 {
		t.Fatalf("unexpected max tokens: %v", cfg.AI.MaxTokens)
	}
}

func TestLoadRejectsInvalidNumericValues(t *testing.T) {
	t.Setenv("ARK_TEMPERATURE", "warm")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for invalid ARK_TEMPERATURE")
	}
	t.Setenv("ARK_TEMPERATURE", "")

	t.Setenv("CHAT_MAX_MESSAGES", "many")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for invalid CHAT_MAX_MESSAGES")
	}

	t.Setenv("CHAT_MAX_MESSAGES", "0")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for non-positive CHAT_MAX_MESSAGES")
	}
}

func TestLoadSpeechEnabledWhenConfigured(t *testing.T) {
	t.Setenv("SPEECH_BASE_URL", "https://audio.example.com/v1")
	t.Setenv("SPEECH_API_KEY", "speech-key")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}
	if !cfg.Speech.Enabled {
		t.Fatal("speech must be enabled with base url and key")
	}
	if cfg.Speech.APIKey != "speech-key" {
		t.Fatalf("unexpected speech key: %s", cfg.Speech.APIKey)
	}
}

func TestLoadSpeechKeyFallsBackToModelKey(t *testing.T) {
	t.Setenv("SPEECH_BASE_URL", "https://audio.example.com/v1")
	t.Setenv("SPEECH_API_KEY", "")
	t.Setenv("ARK_API_KEY", "shared-key")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}
	if cfg.Speech.APIKey != "shared-key" {
		t.Fatalf("expected fallback to model key, got %s", cfg.Speech.APIKey)
	}
}
