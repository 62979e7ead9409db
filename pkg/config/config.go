package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config carries every knob for both pipelines. It is constructed once per
// run and passed into component constructors; nothing in this package keeps
// process-wide state.
type Config struct {
	Version       string `json:"version" yaml:"version"`
	ProvidersFile string `json:"providers_file" yaml:"providers_file"`

	Model         ModelConfig       `json:"model_settings" yaml:"model_settings"`
	Thresholds    Thresholds        `json:"skill_thresholds" yaml:"skill_thresholds"`
	Similarity    SimilarityWeights `json:"similarity_weights" yaml:"similarity_weights"`
	Scoring       ScoringWeights    `json:"scoring_weights" yaml:"scoring_weights"`
	Normalization Normalization     `json:"normalization" yaml:"normalization"`
	SynonymFile   string            `json:"synonym_file" yaml:"synonym_file"`
	AcronymFile   string            `json:"acronym_file" yaml:"acronym_file"`
	Chunking      Chunking          `json:"chunking" yaml:"chunking"`
	Database      Database          `json:"database" yaml:"database"`
}

type ModelConfig struct {
	Provider  string  `json:"provider" yaml:"provider"`
	Name      string  `json:"model_name" yaml:"model_name"`
	BaseURL   string  `json:"base_url" yaml:"base_url"`
	APIKey    string  `json:"api_key" yaml:"api_key"`
	RateLimit float64 `json:"rate_limit" yaml:"rate_limit"` // requests per second, 0 = unlimited
}

type Thresholds struct {
	Strong float64 `json:"strong" yaml:"strong"`
	Nice   float64 `json:"nice" yaml:"nice"`
	Weak   float64 `json:"weak" yaml:"weak"`
}

type SimilarityWeights struct {
	Semantic float64 `json:"semantic" yaml:"semantic"`
	Lexical  float64 `json:"lexical" yaml:"lexical"`
}

type ScoringWeights struct {
	RequiredSkill float64 `json:"required_skill" yaml:"required_skill"`
	OptionalSkill float64 `json:"optional_skill" yaml:"optional_skill"`
}

type Normalization struct {
	Lowercase         bool `json:"lowercase" yaml:"lowercase"`
	RemovePunctuation bool `json:"remove_punctuation" yaml:"remove_punctuation"`
	StripWhitespace   bool `json:"strip_whitespace" yaml:"strip_whitespace"`
	ApplySynonyms     bool `json:"apply_synonyms" yaml:"apply_synonyms"`
	ApplyAcronyms     bool `json:"apply_acronyms" yaml:"apply_acronyms"`
	SplitAlternatives bool `json:"split_alternatives" yaml:"split_alternatives"`
}

type Chunking struct {
	Size    int    `json:"size" yaml:"size"`
	Overlap int    `json:"overlap" yaml:"overlap"`
	Unit    string `json:"unit" yaml:"unit"` // "char" or "word"
}

type Database struct {
	URL       string `json:"url" yaml:"url"`
	TableName string `json:"table_name" yaml:"table_name"`
	VectorDim int    `json:"vector_dim" yaml:"vector_dim"`
	BatchSize int    `json:"batch_size" yaml:"batch_size"`
}

// Provider is one entry in the shared providers file.
type Provider struct {
	BaseURL string `json:"base_url" yaml:"base_url"`
	APIKey  string `json:"api_key" yaml:"api_key"`
}

// LoadConfig reads the module config file, merges the shared providers file
// and environment, and applies defaults. An empty path falls back to the
// default search locations; if none exists the built-in defaults are used.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		locations := []string{
			"skillpipe.json",
			"config.json",
			filepath.Join(os.Getenv("HOME"), ".config/skillpipe/config.json"),
			"/etc/skillpipe/config.json",
		}

		for _, loc := range locations {
			if _, err := os.Stat(loc); err == nil {
				path = loc
				break
			}
		}
	}

	if path == "" {
		return getDefaultConfig()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config Config
	if err := unmarshalByExt(path, data, &config); err != nil {
		return nil, fmt.Errorf("error parsing config file %s: %w", path, err)
	}

	if err := mergeProviders(&config, filepath.Dir(path)); err != nil {
		return nil, err
	}

	mergeWithEnv(&config)
	applyDefaults(&config)

	return &config, nil
}

func getDefaultConfig() (*Config, error) {
	config := &Config{}
	applyDefaults(config)
	mergeWithEnv(config)
	return config, nil
}

func unmarshalByExt(path string, data []byte, config *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, config)
	default:
		return json.Unmarshal(data, config)
	}
}

// mergeProviders fills provider-specific connection details from the shared
// providers file. Module config values win when both are set.
func mergeProviders(config *Config, baseDir string) error {
	if config.ProvidersFile == "" {
		return nil
	}

	path := config.ProvidersFile
	if !filepath.IsAbs(path) {
		path = filepath.Join(baseDir, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("error reading providers file %s: %w", path, err)
	}

	var providers map[string]Provider
	if err := unmarshalProviders(path, data, &providers); err != nil {
		return fmt.Errorf("error parsing providers file %s: %w", path, err)
	}

	p, ok := providers[config.Model.Provider]
	if !ok {
		return nil
	}
	if config.Model.BaseURL == "" {
		config.Model.BaseURL = p.BaseURL
	}
	if config.Model.APIKey == "" {
		config.Model.APIKey = p.APIKey
	}

	return nil
}

func unmarshalProviders(path string, data []byte, providers *map[string]Provider) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, providers)
	default:
		return json.Unmarshal(data, providers)
	}
}

func applyDefaults(config *Config) {
	if config.Version == "" {
		config.Version = "1.0.0"
	}

	if config.Model.Provider == "" {
		config.Model.Provider = "ollama"
	}
	if config.Model.Name == "" {
		config.Model.Name = "nomic-embed-text:latest"
	}
	if config.Model.BaseURL == "" {
		config.Model.BaseURL = "http://localhost:11434"
	}

	if config.Thresholds == (Thresholds{}) {
		config.Thresholds = Thresholds{Strong: 0.7, Nice: 0.6, Weak: 0.5}
	}
	if config.Similarity == (SimilarityWeights{}) {
		config.Similarity = SimilarityWeights{Semantic: 0.7, Lexical: 0.3}
	}
	if config.Scoring == (ScoringWeights{}) {
		config.Scoring = ScoringWeights{RequiredSkill: 0.7, OptionalSkill: 0.3}
	}

	if config.Chunking.Size == 0 {
		config.Chunking.Size = 13000
		if config.Chunking.Overlap == 0 {
			config.Chunking.Overlap = 400
		}
	}
	if config.Chunking.Unit == "" {
		config.Chunking.Unit = "char"
	}

	if config.Database.TableName == "" {
		config.Database.TableName = "chunks"
	}
	if config.Database.VectorDim == 0 {
		config.Database.VectorDim = 768
	}
	if config.Database.BatchSize == 0 {
		config.Database.BatchSize = 100
	}
}

func mergeWithEnv(config *Config) {
	if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" {
		config.Model.BaseURL = baseURL
	}
	if apiKey := os.Getenv("SKILLPIPE_API_KEY"); apiKey != "" {
		config.Model.APIKey = apiKey
	}
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		config.Database.URL = dbURL
	}
}
