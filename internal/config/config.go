package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App struct {
		Port    int    `yaml:"port"`
		DataDir string `yaml:"data_dir"`
	} `yaml:"app"`

	Polling struct {
		CycleSeconds int `yaml:"cycle_seconds"`
	} `yaml:"polling"`

	// Policy holds the business choices the original pipeline hard-coded.
	Policy struct {
		AutoSend                   bool `yaml:"auto_send"`
		AssumeContractWhenUnstated bool `yaml:"assume_contract_when_unstated"`
		ProcessUnknownGeography    bool `yaml:"process_unknown_geography"`
	} `yaml:"policy"`

	// Identity is what goes into the draft prompt, not into the pipeline.
	Identity struct {
		Name  string `yaml:"name"`
		Phone string `yaml:"phone"`
		Email string `yaml:"email"`
	} `yaml:"identity"`

	Filters struct {
		ExtraNonUSTerms     []string `yaml:"extra_non_us_terms"`
		ExtraExclusionTerms []string `yaml:"extra_exclusion_terms"`
	} `yaml:"filters"`

	Drafter struct {
		BaseURL        string  `yaml:"base_url"`
		Model          string  `yaml:"model"`
		Temperature    float64 `yaml:"temperature"`
		MaxTokens      int     `yaml:"max_tokens"`
		TimeoutSeconds int     `yaml:"timeout_seconds"`
	} `yaml:"drafter"`

	SMTP struct {
		Host           string `yaml:"host"`
		Port           int    `yaml:"port"`
		Username       string `yaml:"username"`
		From           string `yaml:"from"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
	} `yaml:"smtp"`

	Sources struct {
		IMAP struct {
			Enabled    bool     `yaml:"enabled"`
			Host       string   `yaml:"host"`
			Port       int      `yaml:"port"`
			Username   string   `yaml:"username"`
			Mailbox    string   `yaml:"mailbox"`
			SubjectAny []string `yaml:"subject_any"`
		} `yaml:"imap"`

		Pages struct {
			Enabled bool   `yaml:"enabled"`
			Dir     string `yaml:"dir"`
		} `yaml:"pages"`
	} `yaml:"sources"`

	Limits struct {
		Workers        int     `yaml:"workers"`
		SendsPerMinute float64 `yaml:"sends_per_minute"`
		SendBurst      int     `yaml:"send_burst"`
	} `yaml:"limits"`
}

// Default is the baseline a loaded file overlays. The optimistic policy
// defaults mirror the original behavior; flip them in config to tighten.
func Default() Config {
	var cfg Config
	cfg.App.Port = 38472
	cfg.Polling.CycleSeconds = 120
	cfg.Policy.AutoSend = true
	cfg.Policy.AssumeContractWhenUnstated = true
	cfg.Policy.ProcessUnknownGeography = true
	cfg.Drafter.BaseURL = "https://api.openai.com/v1"
	cfg.Drafter.Model = "gpt-4o-mini"
	cfg.Drafter.Temperature = 0.7
	cfg.Drafter.MaxTokens = 500
	cfg.Drafter.TimeoutSeconds = 60
	cfg.SMTP.Host = "smtp.gmail.com"
	cfg.SMTP.Port = 587
	cfg.SMTP.TimeoutSeconds = 30
	cfg.Sources.IMAP.Port = 993
	cfg.Sources.IMAP.Mailbox = "INBOX"
	cfg.Limits.Workers = 2
	cfg.Limits.SendsPerMinute = 2
	cfg.Limits.SendBurst = 1
	return cfg
}

func Load(path string) (Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	err = yaml.Unmarshal(b, &cfg)
	return cfg, err
}
