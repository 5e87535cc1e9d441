package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv     = "ARXIV_SUMMARIZER_CONFIG"
	telegramTokenEnv  = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv = "TELEGRAM_CHAT_ID"
	geminiAPIKeyEnv   = "GEMINI_API_KEY"
	geminiModelEnv    = "GEMINI_MODEL"
	ledgerPathEnv     = "LEDGER_PATH"
	databaseDSNEnv    = "DATABASE_DSN"
	repoDirEnv        = "SUMMARY_REPO_DIR"
)

// Config holds high-level settings required across the application.
type Config struct {
	Telegram  TelegramConfig  `yaml:"telegram"`
	Gemini    GeminiConfig    `yaml:"gemini"`
	Arxiv     ArxivConfig     `yaml:"arxiv"`
	Ledger    LedgerConfig    `yaml:"ledger"`
	Repo      RepoConfig      `yaml:"repo"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// TelegramConfig wires all data required to poll and send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// GeminiConfig defines how to contact the Gemini API.
type GeminiConfig struct {
	Endpoint string        `yaml:"endpoint"`
	Model    string        `yaml:"model"`
	APIKey   string        `yaml:"apiKey"`
	Timeout  time.Duration `yaml:"timeout"`
}

// ArxivConfig describes the export API client behavior.
type ArxivConfig struct {
	APIURL          string        `yaml:"apiUrl"`
	MaxRetries      int           `yaml:"maxRetries"`
	RetryBackoff    time.Duration `yaml:"retryBackoff"`
	RequestInterval time.Duration `yaml:"requestInterval"`
	IncludeFullText bool          `yaml:"includeFullText"`
	FullTextLimit   int           `yaml:"fullTextLimit"`
}

// LedgerConfig selects and locates the processed-set backend.
type LedgerConfig struct {
	Backend string `yaml:"backend"` // file or postgres
	Path    string `yaml:"path"`
	DSN     string `yaml:"dsn"`
}

// RepoConfig describes the summary repository the publisher commits into.
type RepoConfig struct {
	Dir          string `yaml:"dir"`
	Remote       string `yaml:"remote"`
	Branch       string `yaml:"branch"`
	Push         bool   `yaml:"push"`
	LinkTemplate string `yaml:"linkTemplate"`
}

// SchedulerConfig defines how often the pipeline runs.
type SchedulerConfig struct {
	Interval time.Duration `yaml:"interval"`
	LockPath string        `yaml:"lockPath"`
}

// LoggingConfig controls the slog handler.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text or json
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Telegram.BotToken = v
	}

	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Telegram.ChatID = v
	}

	if v := os.Getenv(geminiAPIKeyEnv); v != "" {
		c.Gemini.APIKey = v
	}

	if v := os.Getenv(geminiModelEnv); v != "" {
		c.Gemini.Model = v
	}

	if v := os.Getenv(ledgerPathEnv); v != "" {
		c.Ledger.Path = v
	}

	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Ledger.DSN = v
	}

	if v := os.Getenv(repoDirEnv); v != "" {
		c.Repo.Dir = v
	}
}

func mergeConfig(base, override Config) Config {
	if override.Telegram.BotToken != "" {
		base.Telegram.BotToken = override.Telegram.BotToken
	}
	if override.Telegram.ChatID != "" {
		base.Telegram.ChatID = override.Telegram.ChatID
	}

	if override.Gemini.Endpoint != "" {
		base.Gemini.Endpoint = override.Gemini.Endpoint
	}
	if override.Gemini.Model != "" {
		base.Gemini.Model = override.Gemini.Model
	}
	if override.Gemini.APIKey != "" {
		base.Gemini.APIKey = override.Gemini.APIKey
	}
	if override.Gemini.Timeout > 0 {
		base.Gemini.Timeout = override.Gemini.Timeout
	}

	if override.Arxiv.APIURL != "" {
		base.Arxiv.APIURL = override.Arxiv.APIURL
	}
	if override.Arxiv.MaxRetries > 0 {
		base.Arxiv.MaxRetries = override.Arxiv.MaxRetries
	}
	if override.Arxiv.RetryBackoff > 0 {
		base.Arxiv.RetryBackoff = override.Arxiv.RetryBackoff
	}
	if override.Arxiv.RequestInterval > 0 {
		base.Arxiv.RequestInterval = override.Arxiv.RequestInterval
	}
	if override.Arxiv.IncludeFullText {
		base.Arxiv.IncludeFullText = true
	}
	if override.Arxiv.FullTextLimit > 0 {
		base.Arxiv.FullTextLimit = override.Arxiv.FullTextLimit
	}

	if override.Ledger.Backend != "" {
		base.Ledger.Backend = override.Ledger.Backend
	}
	if override.Ledger.Path != "" {
		base.Ledger.Path = override.Ledger.Path
	}
	if override.Ledger.DSN != "" {
		base.Ledger.DSN = override.Ledger.DSN
	}

	if override.Repo.Dir != "" {
		base.Repo.Dir = override.Repo.Dir
	}
	if override.Repo.Remote != "" {
		base.Repo.Remote = override.Repo.Remote
	}
	if override.Repo.Branch != "" {
		base.Repo.Branch = override.Repo.Branch
	}
	if override.Repo.Push {
		base.Repo.Push = true
	}
	if override.Repo.LinkTemplate != "" {
		base.Repo.LinkTemplate = override.Repo.LinkTemplate
	}

	if override.Scheduler.Interval > 0 {
		base.Scheduler.Interval = override.Scheduler.Interval
	}
	if override.Scheduler.LockPath != "" {
		base.Scheduler.LockPath = override.Scheduler.LockPath
	}

	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}
	if override.Logging.Format != "" {
		base.Logging.Format = override.Logging.Format
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Telegram: TelegramConfig{BotToken: "", ChatID: ""},
		Gemini: GeminiConfig{
			Endpoint: "https://generativelanguage.googleapis.com",
			Model:    "gemini-2.0-flash-exp",
			APIKey:   "",
			Timeout:  90 * time.Second,
		},
		Arxiv: ArxivConfig{
			APIURL:          "https://export.arxiv.org/api/query",
			MaxRetries:      3,
			RetryBackoff:    time.Second,
			RequestInterval: 3 * time.Second,
			IncludeFullText: false,
			FullTextLimit:   120_000,
		},
		Ledger: LedgerConfig{
			Backend: "file",
			Path:    ".processed_papers.json",
		},
		Repo: RepoConfig{
			Dir:          ".",
			Remote:       "origin",
			Branch:       "main",
			Push:         true,
			LinkTemplate: "{id}/{id}.md",
		},
		Scheduler: SchedulerConfig{
			Interval: time.Hour,
			LockPath: ".summarizer.lock",
		},
		Logging: LoggingConfig{Level: "info", Format: "text"},
	}
}
