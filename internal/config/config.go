package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port        int `yaml:"port"`
		MaxUploadMB int `yaml:"maxUploadMB"`
		RateLimit   struct {
			Capacity   int `yaml:"capacity"`
			RefillRate int `yaml:"refillRate"`
		} `yaml:"rateLimit"`
	} `yaml:"server"`

	Storage struct {
		Backend  string `yaml:"backend"` // local | minio
		LocalDir string `yaml:"localDir"`
	} `yaml:"storage"`

	Minio struct {
		Endpoint   string `yaml:"endpoint"`
		AccessKey  string `yaml:"accessKey"`
		SecretKey  string `yaml:"secretKey"`
		BucketName string `yaml:"bucketName"`
		Region     string `yaml:"region"`
		UseSSL     bool   `yaml:"useSSL"`
	} `yaml:"minio"`

	OpenAI struct {
		APIKey          string `yaml:"apiKey"`
		TranscribeModel string `yaml:"transcribeModel"`
		Detectors       []struct {
			Name  string `yaml:"name"`
			Model string `yaml:"model"`
			Focus string `yaml:"focus"`
		} `yaml:"detectors"`
	} `yaml:"openai"`

	Analysis struct {
		Workers      int `yaml:"workers"`
		QueueSize    int `yaml:"queueSize"`
		MaxTextBytes int `yaml:"maxTextBytes"`
	} `yaml:"analysis"`
}

// Load reads the config.yaml file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	// secrets come from the environment when not in the file
	if cfg.OpenAI.APIKey == "" {
		cfg.OpenAI.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.OpenAI.APIKey == "" {
		return nil, fmt.Errorf("openai api key missing: set openai.apiKey or OPENAI_API_KEY")
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8000
	}
	if c.Server.MaxUploadMB == 0 {
		c.Server.MaxUploadMB = 512
	}
	if c.Server.RateLimit.Capacity == 0 {
		c.Server.RateLimit.Capacity = 30
	}
	if c.Server.RateLimit.RefillRate == 0 {
		c.Server.RateLimit.RefillRate = 1
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = "local"
	}
	if c.OpenAI.TranscribeModel == "" {
		c.OpenAI.TranscribeModel = "whisper-1"
	}
	if len(c.OpenAI.Detectors) == 0 {
		// mirror the three-model ensemble the service started with
		c.OpenAI.Detectors = []struct {
			Name  string `yaml:"name"`
			Model string `yaml:"model"`
			Focus string `yaml:"focus"`
		}{
			{Name: "deid_ner", Model: "gpt-4o-mini", Focus: "clinical and document de-identification: names, dates, ids, locations"},
			{Name: "general_ner", Model: "gpt-4o-mini", Focus: "general named entities: persons, organizations, locations"},
			{Name: "privacy_ner", Model: "gpt-4o-mini", Focus: "personal data: emails, phone numbers, addresses, account numbers"},
		}
	}
	if c.Analysis.Workers == 0 {
		c.Analysis.Workers = 2
	}
	if c.Analysis.QueueSize == 0 {
		c.Analysis.QueueSize = 64
	}
	if c.Analysis.MaxTextBytes == 0 {
		c.Analysis.MaxTextBytes = 1 << 20
	}
}
