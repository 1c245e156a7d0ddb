package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	APIKeyEnv     = "ANTHROPIC_API_KEY"
	BaseURLEnv    = "TWIN_LLM_BASE_URL"
	ModelEnv      = "TWIN_LLM_MODEL"
	ModelsDirEnv  = "TWIN_WHISPER_MODELS"
	ProxyEnv      = "TWIN_PROXY"
	DefaultModel  = "claude-3-5-sonnet-20240620"
	DefaultURL    = "https://api.anthropic.com/v1/"
	defaultModels = "models"
)

var ErrMissingAPIKey = errors.New(APIKeyEnv + " is not set")

// Getenv matches os.Getenv so lookups can be swapped out in tests.
type Getenv func(string) string

// LoadEnvFile loads KEY=VALUE pairs from path without overriding variables
// that are already set. A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// LLM describes how to reach the hosted language model.
type LLM struct {
	APIKey  string
	BaseURL string
	Model   string
	Proxy   string
}

func LoadLLM(getenv Getenv) LLM {
	return LLM{
		APIKey:  strings.TrimSpace(getenv(APIKeyEnv)),
		BaseURL: orDefault(getenv(BaseURLEnv), DefaultURL),
		Model:   orDefault(getenv(ModelEnv), DefaultModel),
		Proxy:   strings.TrimSpace(getenv(ProxyEnv)),
	}
}

// Validate reports ErrMissingAPIKey when no credential is configured.
func (c LLM) Validate() error {
	if c.APIKey == "" {
		return ErrMissingAPIKey
	}
	return nil
}

// ModelsDir is where whisper ggml models are looked up by name.
func ModelsDir(getenv Getenv) string {
	return orDefault(getenv(ModelsDirEnv), defaultModels)
}

// Bridge is the environment of the inbound message adapter process.
type Bridge struct {
	LLM      LLM
	Domain   string
	Port     int
	APIPort  int
	AgentID  string
	CertPath string
	KeyPath  string
}

// Local reports whether the bridge should start on the plaintext loopback path.
func (b Bridge) Local() bool {
	return b.Domain == "localhost"
}

func LoadBridge(getenv Getenv) (Bridge, error) {
	b := Bridge{
		LLM:      LoadLLM(getenv),
		Domain:   strings.TrimSpace(getenv("DOMAIN_NAME")),
		AgentID:  strings.TrimSpace(getenv("AGENT_ID")),
		CertPath: orDefault(getenv("CERT_PATH"), "fullchain.pem"),
		KeyPath:  orDefault(getenv("KEY_PATH"), "privkey.pem"),
	}

	if err := b.LLM.Validate(); err != nil {
		return Bridge{}, err
	}
	if b.Domain == "" {
		return Bridge{}, errors.New("DOMAIN_NAME is not set")
	}

	var err error
	if b.Port, err = intEnv(getenv, "PORT", 6000); err != nil {
		return Bridge{}, err
	}
	if b.APIPort, err = intEnv(getenv, "API_PORT", 6001); err != nil {
		return Bridge{}, err
	}

	return b, nil
}

func intEnv(getenv Getenv, key string, def int) (int, error) {
	raw := strings.TrimSpace(getenv(key))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 || v > 65535 {
		return 0, fmt.Errorf("invalid %s %q", key, raw)
	}
	return v, nil
}

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return def
}
