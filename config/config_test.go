package config

import (
	"testing"
	"time"
)

func TestLLMConfigValidate(t *testing.T) {
	valid := LLMConfig{Provider: "groq", APIKey: "gsk_abc123", Timeout: time.Minute}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	missing := valid
	missing.APIKey = "  "
	if err := missing.Validate(); err == nil {
		t.Fatal("missing api key accepted")
	}

	wrongPrefix := valid
	wrongPrefix.APIKey = "sk-openai-style"
	if err := wrongPrefix.Validate(); err == nil {
		t.Fatal("non-gsk key accepted for groq")
	}

	// other providers are not held to the Groq key format
	gemini := LLMConfig{Provider: "gemini", APIKey: "AIzaSyExample", Timeout: time.Minute}
	if err := gemini.Validate(); err != nil {
		t.Fatalf("gemini key rejected: %v", err)
	}

	noTimeout := valid
	noTimeout.Timeout = 0
	if err := noTimeout.Validate(); err == nil {
		t.Fatal("zero timeout accepted")
	}
}

func TestSearchConfigValidate(t *testing.T) {
	if err := (SearchConfig{MaxResults: 3}).Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
	if err := (SearchConfig{MaxResults: 0}).Validate(); err == nil {
		t.Fatal("max_results 0 accepted")
	}
	if err := (SearchConfig{MaxResults: 11}).Validate(); err == nil {
		t.Fatal("max_results 11 accepted")
	}
}

func TestSessionConfigValidate(t *testing.T) {
	if err := (SessionConfig{Store: "inmemory", TTL: time.Hour}).Validate(); err != nil {
		t.Fatalf("inmemory rejected: %v", err)
	}
	if err := (SessionConfig{Store: "redis", TTL: time.Hour, Redis: RedisConfig{Host: "localhost", Port: "6379"}}).Validate(); err != nil {
		t.Fatalf("redis rejected: %v", err)
	}
	if err := (SessionConfig{Store: "redis", TTL: time.Hour}).Validate(); err == nil {
		t.Fatal("redis without host/port accepted")
	}
	if err := (SessionConfig{Store: "postgres", TTL: time.Hour}).Validate(); err == nil {
		t.Fatal("unknown store accepted")
	}
	if err := (SessionConfig{Store: "inmemory"}).Validate(); err == nil {
		t.Fatal("zero ttl accepted")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("SCRIBE_LLM_API_KEY", "gsk_test_key")

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Server.Address != ":8080" {
		t.Errorf("server.address = %q", cfg.Server.Address)
	}
	if cfg.LLM.Provider != "groq" || cfg.LLM.Model != "llama-3.1-8b-instant" {
		t.Errorf("llm defaults: %+v", cfg.LLM)
	}
	if cfg.LLM.APIKey != "gsk_test_key" {
		t.Errorf("llm.api_key = %q", cfg.LLM.APIKey)
	}
	if cfg.Search.MaxResults != 3 {
		t.Errorf("search.max_results = %d", cfg.Search.MaxResults)
	}
	if cfg.Session.Store != "inmemory" || cfg.Session.TTL != time.Hour {
		t.Errorf("session defaults: %+v", cfg.Session)
	}
	if !cfg.Encyclopedia.Enabled {
		t.Error("encyclopedia should default to enabled")
	}
}

func TestLoadConfigLegacyEnvNames(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "gsk_legacy_key")
	t.Setenv("SERPER_API_KEY", "serper_legacy_key")

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.LLM.APIKey != "gsk_legacy_key" {
		t.Errorf("llm.api_key = %q", cfg.LLM.APIKey)
	}
	if cfg.Search.APIKey != "serper_legacy_key" {
		t.Errorf("search.api_key = %q", cfg.Search.APIKey)
	}
}

func TestLoadConfigRejectsBadKey(t *testing.T) {
	t.Setenv("SCRIBE_LLM_API_KEY", "not-a-groq-key")

	if _, err := LoadConfig(""); err == nil {
		t.Fatal("malformed groq key accepted at load time")
	}
}
