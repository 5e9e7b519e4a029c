package cfg

import (
	"cmp"
	"fmt"
	"strings"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Server configuration
	Port           string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	BaseUrl        string `long:"base-url" env:"BASE_URL" description:"Public base URL for the service (e.g., https://news.example.com)"`
	AllowedOrigins string `long:"allowed-origins" env:"ALLOWED_ORIGINS" default:"*" description:"Comma-separated list of CORS origins"`

	// Provider configuration
	GNewsAPIKey    string `long:"gnews-api-key" env:"GNEWS_API_KEY" description:"GNews API key"`
	GNewsBaseURL   string `long:"gnews-base-url" env:"GNEWS_BASE_URL" default:"https://gnews.io/api/v4" description:"GNews API base URL"`
	Language       string `long:"lang" env:"NEWS_LANG" default:"en" description:"Article language requested from the provider"`
	DefaultMax     int    `long:"default-max" env:"NEWS_DEFAULT_MAX" default:"10" description:"Result cap used when max is missing or invalid"`
	RequestTimeout int    `long:"request-timeout" env:"REQUEST_TIMEOUT" default:"30" description:"Outbound request timeout in seconds"`

	// Storage configuration
	StorageBackend string `long:"storage" env:"STORAGE_BACKEND" default:"sqlite" choice:"sqlite" choice:"redis" choice:"memory" description:"Per-device storage backend"`
	DBPath         string `long:"db-path" env:"DB_PATH" default:"./data/news.db" description:"SQLite database path"`
	RedisAddr      string `long:"redis-addr" env:"REDIS_ADDR" default:"localhost:6379" description:"Redis address for the redis storage backend"`

	// Section presets
	SectionsDir string `long:"sections-dir" env:"SECTIONS_DIR" default:"./sections" description:"Directory containing section preset files"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"News Desk/1.0" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, Asia/Kolkata)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	return LoadArgs(nil)
}

// LoadArgs parses the given arguments instead of os.Args when args is non-nil.
func LoadArgs(args []string) (*Cfg, error) {
	// A missing .env file is not an error
	_ = godotenv.Load()

	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	var err error
	if args != nil {
		_, err = parser.ParseArgs(args)
	} else {
		_, err = parser.Parse()
	}
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		Port:           raw.Port,
		BaseUrl:        strings.TrimRight(raw.BaseUrl, "/"),
		AllowedOrigins: splitList(raw.AllowedOrigins),
		GNewsAPIKey:    raw.GNewsAPIKey,
		GNewsBaseURL:   strings.TrimRight(raw.GNewsBaseURL, "/"),
		Language:       raw.Language,
		DefaultMax:     raw.DefaultMax,
		RequestTimeout: time.Duration(raw.RequestTimeout) * time.Second,
		StorageBackend: raw.StorageBackend,
		DBPath:         raw.DBPath,
		RedisAddr:      raw.RedisAddr,
		SectionsDir:    raw.SectionsDir,
		UserAgent:      raw.UserAgent,
		Timezone:       raw.Timezone,
		Debug:          raw.Debug,
		Version:        GetVersion(),
	}

	if cfg.DefaultMax <= 0 {
		cfg.DefaultMax = 10
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
		}
	}
	return nil
}

func splitList(value string) []string {
	var result []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
