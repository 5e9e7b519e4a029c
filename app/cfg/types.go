package cfg

import "time"

type Cfg struct {
	// Server configuration
	Port           string
	BaseUrl        string
	AllowedOrigins []string

	// Provider configuration
	GNewsAPIKey    string
	GNewsBaseURL   string
	Language       string
	DefaultMax     int
	RequestTimeout time.Duration

	// Storage configuration
	StorageBackend string
	DBPath         string
	RedisAddr      string

	// Section presets
	SectionsDir string

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
