package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/randalmurphal/ltmkit/model"
)

// Format is a config file syntax.
type Format string

// Supported formats.
const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
)

// ErrUnsupportedFormat is returned for file extensions Load does not know.
var ErrUnsupportedFormat = errors.New("unsupported config format")

// FormatOf picks the format from the file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	case ".json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, path)
}

// Load reads the file at path over Default, applies the environment and
// validates the result.
func Load(path string) (Config, error) {
	format, err := FormatOf(path)
	if err != nil {
		return Config{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := Decode(data, format, &cfg); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	cfg.LoadFromEnv()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Decode parses data into cfg. Fields absent from data keep their value.
// Unknown keys are an error.
func Decode(data []byte, format Format, cfg *Config) error {
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("decode yaml: %w", err)
		}
	case FormatTOML:
		md, err := toml.Decode(string(data), cfg)
		if err != nil {
			return fmt.Errorf("decode toml: %w", err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			return fmt.Errorf("decode toml: unknown keys %s", strings.Join(keys, ", "))
		}
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("decode json: %w", err)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	return nil
}

// FromEnv returns Default with the environment applied.
func FromEnv() Config {
	cfg := Default()
	cfg.LoadFromEnv()
	return cfg
}

// LoadFromEnv populates fields from environment variables. Variables use
// the LTMKIT_ prefix and take precedence over existing values. Values that
// do not parse are ignored.
//
// Supported variables:
//   - LTMKIT_DEFAULT_MODEL, LTMKIT_THINKING_MODEL, LTMKIT_FAST_MODEL
//   - LTMKIT_TEMPERATURE
//   - LTMKIT_MAX_ATTEMPTS, LTMKIT_MAX_ITERATIONS
//   - LTMKIT_WRITE_TOOLS
//   - LTMKIT_RELEVANCE_FLOOR, LTMKIT_TOP_K, LTMKIT_RETRIEVE_K
//   - LTMKIT_FOLD_ORDER
//   - LTMKIT_STORE_PATH
//   - LTMKIT_MAX_PROMPT_TOKENS, LTMKIT_MAX_MESSAGE_TOKENS
//   - LTMKIT_TRACE_DIR
func (c *Config) LoadFromEnv() {
	if v := os.Getenv("LTMKIT_DEFAULT_MODEL"); v != "" {
		c.Models.Default = model.Resolve(v)
	}
	if v := os.Getenv("LTMKIT_THINKING_MODEL"); v != "" {
		c.Models.Thinking = model.Resolve(v)
	}
	if v := os.Getenv("LTMKIT_FAST_MODEL"); v != "" {
		c.Models.Fast = model.Resolve(v)
	}
	if v := os.Getenv("LTMKIT_TEMPERATURE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Temperature = &f
		}
	}
	envInt("LTMKIT_MAX_ATTEMPTS", &c.Retry.MaxAttempts)
	envInt("LTMKIT_MAX_ITERATIONS", &c.Retry.MaxIterations)
	if v := os.Getenv("LTMKIT_WRITE_TOOLS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.WriteTools = b
		}
	}
	if v := os.Getenv("LTMKIT_RELEVANCE_FLOOR"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Ranker.RelevanceFloor = f
		}
	}
	envInt("LTMKIT_TOP_K", &c.Ranker.TopK)
	envInt("LTMKIT_RETRIEVE_K", &c.RetrieveK)
	if v := os.Getenv("LTMKIT_FOLD_ORDER"); v != "" {
		c.FoldOrder = v
	}
	if v := os.Getenv("LTMKIT_STORE_PATH"); v != "" {
		c.StorePath = v
	}
	envInt("LTMKIT_MAX_PROMPT_TOKENS", &c.MaxPromptTokens)
	envInt("LTMKIT_MAX_MESSAGE_TOKENS", &c.MaxMessageTokens)
	if v := os.Getenv("LTMKIT_TRACE_DIR"); v != "" {
		c.TraceDir = v
	}
}

func envInt(key string, dst *int) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
