package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

const (
	DefaultConfigFileName = "config.toml"
	DefaultDBName         = "artdesk.db"
	DefaultAddr           = ":8787"
	DefaultBaseURL        = "http://localhost:8787"
	DefaultTimeout        = 10 * time.Second
	DefaultSaveDebounce   = time.Second
)

// Env overrides.
const (
	EnvConfigPath = "ARTDESK_CONFIG"
	EnvToken      = "ARTDESK_TOKEN"
)

type Keymap struct {
	Quit        string `toml:"quit"`
	Up          string `toml:"up"`
	Down        string `toml:"down"`
	Left        string `toml:"left"`
	Right       string `toml:"right"`
	Sort        string `toml:"sort"`
	Search      string `toml:"search"`
	Ask         string `toml:"ask"`
	Filter      string `toml:"filter"`
	ClearFilter string `toml:"clear_filters"`
	Edit        string `toml:"edit"`
	Recipe      string `toml:"recipe"`
	Detail      string `toml:"detail"`
	Export      string `toml:"export"`
	Report      string `toml:"report"`
	Confirm     string `toml:"confirm"`
	Cancel      string `toml:"cancel"`
}

type Server struct {
	Addr         string `toml:"addr"`
	Token        string `toml:"token"`
	RoutePrefix  string `toml:"route_prefix"`
	StoreBackend string `toml:"store_backend"`
	DBPath       string `toml:"db_path"`
}

type Client struct {
	BaseURL      string `toml:"base_url"`
	Token        string `toml:"token"`
	Timeout      string `toml:"timeout"`
	SaveDebounce string `toml:"save_debounce"`
}

type Catalog struct {
	KeyField          string   `toml:"key_field"`
	SiloColumn        string   `toml:"silo_column"`
	RecipeColumn      string   `toml:"recipe_column"`
	EnumeratedColumns []string `toml:"enumerated_columns"`
}

type Log struct {
	Level      string `toml:"level"`
	Format     string `toml:"format"`
	OutputPath string `toml:"output_path"`
}

type Config struct {
	Server  Server  `toml:"server"`
	Client  Client  `toml:"client"`
	Catalog Catalog `toml:"catalog"`
	Log     Log     `toml:"log"`
	Keys    Keymap  `toml:"keys"`
}

// ResolveConfigPath picks $ARTDESK_CONFIG, else config.toml under the user
// config directory, else config.toml in the working directory.
func ResolveConfigPath() string {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return DefaultConfigFileName
	}
	return filepath.Join(dir, "artdesk", DefaultConfigFileName)
}

func LoadOrCreate(path string) (Config, error) {
	cfg := defaultConfig()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := write(path, cfg); err != nil {
			return cfg, err
		}
		return cfg.withEnv(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	if cfg.Server.DBPath == "" {
		cfg.Server.DBPath = defaultDBPath(path)
	}
	if cfg.Catalog.KeyField == "" {
		cfg.Catalog.KeyField = "Internal ID"
	}
	return cfg.withEnv(), nil
}

func write(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil && !errors.Is(err, os.ErrExist) {
		return err
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func (c Config) withEnv() Config {
	if tok := os.Getenv(EnvToken); tok != "" {
		c.Server.Token = tok
		c.Client.Token = tok
	}
	return c
}

// ClientTimeout parses client.timeout, falling back to DefaultTimeout.
func (c Config) ClientTimeout() time.Duration {
	return parseDuration(c.Client.Timeout, DefaultTimeout)
}

// SaveDebounce parses client.save_debounce, falling back to
// DefaultSaveDebounce.
func (c Config) SaveDebounce() time.Duration {
	return parseDuration(c.Client.SaveDebounce, DefaultSaveDebounce)
}

func parseDuration(v string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func defaultDBPath(configPath string) string {
	return filepath.Join(filepath.Dir(configPath), DefaultDBName)
}

func defaultConfig() Config {
	return Config{
		Server: Server{
			Addr:         DefaultAddr,
			StoreBackend: "sqlite",
			DBPath:       DefaultDBName,
		},
		Client: Client{
			BaseURL:      DefaultBaseURL,
			Timeout:      DefaultTimeout.String(),
			SaveDebounce: DefaultSaveDebounce.String(),
		},
		Catalog: Catalog{
			KeyField:     "Internal ID",
			SiloColumn:   "Blank Silo",
			RecipeColumn: "Recipe",
			EnumeratedColumns: []string{
				"Blank Silo",
				"Size",
				"MD Active",
				"MD APPROVED",
				"Ready to Activate",
				"PLR Type",
			},
		},
		Log: Log{
			Level:  "info",
			Format: "console",
		},
		Keys: Keymap{
			Quit:        "q",
			Up:          "k",
			Down:        "j",
			Left:        "h",
			Right:       "l",
			Sort:        "s",
			Search:      "/",
			Ask:         "?",
			Filter:      "f",
			ClearFilter: "c",
			Edit:        "e",
			Recipe:      "r",
			Detail:      "enter",
			Export:      "x",
			Report:      "p",
			Confirm:     "enter",
			Cancel:      "esc",
		},
	}
}
