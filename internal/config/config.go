package config

import (
	"fmt"
	"os"
	"path/filepath"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"

	"gopherview/internal/address"
	"gopherview/internal/domain"
)

// Environment overrides, applied after the file is read
const (
	EnvHome    = "GOPHERVIEW_HOME"
	EnvProxy   = "GOPHERVIEW_PROXY"
	EnvLogFile = "GOPHERVIEW_LOG_FILE"
)

// Config represents the application configuration
type Config struct {
	Version   int               `toml:"version"`
	Home      string            `toml:"home"`
	Transport TransportSettings `toml:"transport"`
	Search    SearchSettings    `toml:"search"`
	History   HistorySettings   `toml:"history"`
	UI        UISettings        `toml:"ui"`
	Gateway   GatewaySettings   `toml:"gateway"`
	Log       LogSettings       `toml:"log"`
}

// TransportSettings configures the gopher client
type TransportSettings struct {
	TimeoutSeconds     int    `toml:"timeout_seconds"`
	MaxBytes           int64  `toml:"max_bytes"`
	Proxy              string `toml:"proxy"` // socks5://host:port
	InsecureSkipVerify bool   `toml:"insecure_skip_verify"`
}

// SearchSettings names the server used for free-text searches
type SearchSettings struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	Selector string `toml:"selector"`
}

type HistorySettings struct {
	MaxFrames int `toml:"max_frames"` // 0 keeps everything
}

// UISettings represents UI-related configuration
type UISettings struct {
	DownloadDir      string `toml:"download_dir"`
	FuzzySuggestions bool   `toml:"fuzzy_suggestions"`
	MaxSuggestions   int    `toml:"max_suggestions"`
	MarkdownStyle    string `toml:"markdown_style"` // glamour style name
	WordWrap         int    `toml:"word_wrap"`
}

type GatewaySettings struct {
	Listen         string   `toml:"listen"`
	AllowedOrigins []string `toml:"allowed_origins"`
}

type LogSettings struct {
	File string `toml:"file"`
}

// Validate checks the configuration for values the client cannot use
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Home, validation.By(isAddress)),
	); err != nil {
		return err
	}
	if err := validation.ValidateStruct(&c.Transport,
		validation.Field(&c.Transport.TimeoutSeconds, validation.Min(0)),
		validation.Field(&c.Transport.MaxBytes, validation.Min(int64(0))),
	); err != nil {
		return fmt.Errorf("transport: %w", err)
	}
	if err := validation.ValidateStruct(&c.Search,
		validation.Field(&c.Search.Host, validation.Required),
		validation.Field(&c.Search.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	); err != nil {
		return fmt.Errorf("search: %w", err)
	}
	if err := validation.ValidateStruct(&c.History,
		validation.Field(&c.History.MaxFrames, validation.Min(0)),
	); err != nil {
		return fmt.Errorf("history: %w", err)
	}
	if err := validation.ValidateStruct(&c.UI,
		validation.Field(&c.UI.MaxSuggestions, validation.Min(1)),
		validation.Field(&c.UI.MarkdownStyle, validation.In("auto", "dark", "light", "notty", "dracula", "pink", "tokyo-night", "ascii")),
		validation.Field(&c.UI.WordWrap, validation.Min(0)),
	); err != nil {
		return fmt.Errorf("ui: %w", err)
	}
	return nil
}

func isAddress(value interface{}) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	if _, err := address.Parse(s); err != nil {
		return fmt.Errorf("not a gopher address: %w", err)
	}
	return nil
}

// HomeAddress returns the parsed home page, if one is configured
func (c *Config) HomeAddress() (domain.Address, bool) {
	if c.Home == "" {
		return domain.Address{}, false
	}
	addr, err := address.Parse(c.Home)
	if err != nil {
		return domain.Address{}, false
	}
	return addr, true
}

// SearchEndpoint returns the search server address
func (c *Config) SearchEndpoint() domain.Address {
	addr := domain.NewAddress(c.Search.Host, c.Search.Selector)
	addr.Port = c.Search.Port
	addr.Type = domain.TypeSearch
	return addr
}

// ConfigService handles configuration management
type ConfigService interface {
	Load() (*Config, error)
	Save(config *Config) error
	LoadFromPath(path string) (*Config, error)
	SaveToPath(config *Config, path string) error
}

// configService is the concrete implementation
type configService struct {
	filePath string
}

// NewConfigService creates a config service for the default location
func NewConfigService() ConfigService {
	return &configService{filePath: DefaultPath()}
}

// DefaultPath returns ~/.config/gopherview/config.toml or the platform
// equivalent
func DefaultPath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		// Fallback to home directory
		home, herr := homedir.Dir()
		if herr != nil {
			home = "."
		}
		configDir = filepath.Join(home, ".config")
	}
	return filepath.Join(configDir, "gopherview", "config.toml")
}

// Load loads the configuration, falling back to defaults when the file
// does not exist yet
func (cs *configService) Load() (*Config, error) {
	if _, err := os.Stat(cs.filePath); os.IsNotExist(err) {
		cfg := DefaultConfig()
		if err := finish(cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	return cs.LoadFromPath(cs.filePath)
}

// Save saves the configuration to the default location
func (cs *configService) Save(config *Config) error {
	return cs.SaveToPath(config, cs.filePath)
}

// LoadFromPath loads configuration from a specific path. Keys missing
// from the file keep their default values.
func (cs *configService) LoadFromPath(path string) (*Config, error) {
	path, err := homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("failed to expand config path: %w", err)
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := finish(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SaveToPath saves configuration to a specific path
func (cs *configService) SaveToPath(config *Config, path string) error {
	path, err := homedir.Expand(path)
	if err != nil {
		return fmt.Errorf("failed to expand config path: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// finish applies environment overrides, expands paths and validates
func finish(cfg *Config) error {
	applyEnv(cfg)

	var err error
	if cfg.UI.DownloadDir, err = homedir.Expand(cfg.UI.DownloadDir); err != nil {
		return fmt.Errorf("failed to expand download_dir: %w", err)
	}
	if cfg.Log.File, err = homedir.Expand(cfg.Log.File); err != nil {
		return fmt.Errorf("failed to expand log file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv(EnvHome); v != "" {
		cfg.Home = v
	}
	if v := os.Getenv(EnvProxy); v != "" {
		cfg.Transport.Proxy = v
	}
	if v := os.Getenv(EnvLogFile); v != "" {
		cfg.Log.File = v
	}
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		Home:    "gopher.floodgap.com",
		Transport: TransportSettings{
			TimeoutSeconds: 30,
			MaxBytes:       64 << 20,
		},
		Search: SearchSettings{
			Host:     "gopher.floodgap.com",
			Port:     domain.DefaultPort,
			Selector: "/v2/vs",
		},
		UI: UISettings{
			DownloadDir:    "~/Downloads",
			MaxSuggestions: 8,
			MarkdownStyle:  "auto",
			WordWrap:       100,
		},
		Gateway: GatewaySettings{
			Listen:         ":7070",
			AllowedOrigins: []string{"*"},
		},
		Log: LogSettings{
			File: "~/.config/gopherview/gopherview.log",
		},
	}
}
