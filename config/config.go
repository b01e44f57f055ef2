package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config stores the application configuration.
// Every value comes from the environment (optionally seeded by a .env file).
type Config struct {
	Station StationConfig
	Server  ServerConfig
	LastFM  LastFMConfig
	Voice   VoiceConfig
	Redis   RedisConfig
	Minio   MinioConfig
	Log     LogConfig
}

// StationConfig controls playlist assembly and the streaming loop.
type StationConfig struct {
	Name             string        `env:"STATION_NAME" env-default:"Vintage FM"`
	MusicDir         string        `env:"MUSIC_DIR" env-default:"music"`
	AudioExtensions  []string      `env:"AUDIO_EXTENSIONS" env-default:".mp3" env-separator:","`
	Genre            string        `env:"GENRE" env-default:"swing jazz"`
	RecommendLimit   int           `env:"RECOMMEND_LIMIT" env-default:"5"`
	IntroProbability float64       `env:"INTRO_PROBABILITY" env-default:"0.3"`
	ChunkSize        int           `env:"CHUNK_SIZE" env-default:"1024"`
	TrackPause       time.Duration `env:"TRACK_PAUSE" env-default:"1s"`
	IdleWait         time.Duration `env:"IDLE_WAIT" env-default:"5s"`
	WatchCatalog     bool          `env:"WATCH_CATALOG" env-default:"true"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Host            string        `env:"HOST" env-default:"0.0.0.0"`
	Port            string        `env:"PORT" env-default:"8000"`
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" env-default:"15s"`
	IdleTimeout     time.Duration `env:"IDLE_TIMEOUT" env-default:"120s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" env-default:"10s"`
	PushInterval    time.Duration `env:"NOWPLAYING_PUSH_INTERVAL" env-default:"2s"`
}

// LastFMConfig configures the recommendation and track-info collaborator.
type LastFMConfig struct {
	APIKey  string        `env:"LASTFM_API_KEY"`
	BaseURL string        `env:"LASTFM_BASE_URL" env-default:"https://ws.audioscrobbler.com/2.0/"`
	Timeout time.Duration `env:"LASTFM_TIMEOUT" env-default:"10s"`
}

// VoiceConfig configures the speech-synthesis collaborator.
type VoiceConfig struct {
	APIKey  string        `env:"ELEVENLABS_API_KEY"`
	VoiceID string        `env:"ELEVENLABS_VOICE_ID" env-default:"IVtCAtlu3DNNB0ZLPyRA"`
	ModelID string        `env:"ELEVENLABS_MODEL_ID" env-default:"eleven_multilingual_v2"`
	BaseURL string        `env:"ELEVENLABS_BASE_URL" env-default:"https://api.elevenlabs.io/v1"`
	Timeout time.Duration `env:"ELEVENLABS_TIMEOUT" env-default:"20s"`
}

// RedisConfig configures the optional speech clip cache.
type RedisConfig struct {
	Enabled  bool          `env:"REDIS_ENABLED" env-default:"false"`
	Host     string        `env:"REDIS_HOST" env-default:"127.0.0.1"`
	Port     string        `env:"REDIS_PORT" env-default:"6379"`
	Password string        `env:"REDIS_PASSWORD"`
	DB       int           `env:"REDIS_DB" env-default:"0"`
	TTL      time.Duration `env:"SPEECH_CACHE_TTL" env-default:"24h"`
}

// MinioConfig describes the bucket the local catalog can be seeded from.
type MinioConfig struct {
	Endpoint    string `env:"MINIO_ENDPOINT"`
	AccessKey   string `env:"MINIO_ACCESS_KEY"`
	SecretKey   string `env:"MINIO_SECRET_KEY"`
	Bucket      string `env:"MINIO_BUCKET" env-default:"vintagefm"`
	UseSSL      bool   `env:"MINIO_USE_SSL" env-default:"false"`
	Region      string `env:"MINIO_REGION"`
	Prefix      string `env:"MINIO_PREFIX" env-default:"music/"`
	PullOnStart bool   `env:"MINIO_PULL_ON_START" env-default:"false"`
}

// LogConfig mirrors logger.Config so it can be read from the environment.
type LogConfig struct {
	Level      string `env:"LOG_LEVEL" env-default:"info"`
	File       string `env:"LOG_FILE"`
	MaxSize    int    `env:"LOG_MAX_SIZE" env-default:"100"`
	MaxBackups int    `env:"LOG_MAX_BACKUPS" env-default:"3"`
	MaxAge     int    `env:"LOG_MAX_AGE" env-default:"28"`
	Compress   bool   `env:"LOG_COMPRESS" env-default:"true"`
}

// Load loads configuration from environment variables (via .env file) or defaults.
func Load() (*Config, error) {
	// godotenv.Load() never overrides variables that are already set.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on existing environment variables and defaults.")
	}

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	cfg.Station.AudioExtensions = normalizeExtensions(cfg.Station.AudioExtensions)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the streaming loop cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.Station.RecommendLimit < 0:
		return fmt.Errorf("RECOMMEND_LIMIT must not be negative, got %d", c.Station.RecommendLimit)
	case c.Station.IntroProbability < 0 || c.Station.IntroProbability > 1:
		return fmt.Errorf("INTRO_PROBABILITY must be within [0,1], got %v", c.Station.IntroProbability)
	case c.Station.ChunkSize <= 0:
		return fmt.Errorf("CHUNK_SIZE must be positive, got %d", c.Station.ChunkSize)
	case c.Station.IdleWait <= 0:
		return fmt.Errorf("IDLE_WAIT must be positive, got %s", c.Station.IdleWait)
	case c.Station.TrackPause < 0:
		return fmt.Errorf("TRACK_PAUSE must not be negative, got %s", c.Station.TrackPause)
	}
	return nil
}

// Address returns the listen address for the HTTP server.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}

// MinioEnabled reports whether enough credentials exist to reach the bucket.
func (c *Config) MinioEnabled() bool {
	return c.Minio.Endpoint != "" && c.Minio.AccessKey != "" && c.Minio.SecretKey != ""
}

// normalizeExtensions lowercases extensions and guarantees the leading dot.
func normalizeExtensions(exts []string) []string {
	out := make([]string, 0, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		out = append(out, ext)
	}
	return out
}
