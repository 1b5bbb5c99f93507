package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Database struct {
	Driver     string // postgres or sqlite
	URL        string
	SQLitePath string
}

type MinIO struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	PublicURL string
}

type Storage struct {
	Backend       string // local or minio
	MediaRoot     string
	MediaURL      string
	MaxUploadSize int64
	MinIO         MinIO
}

type Config struct {
	Port            string
	GinMode         string
	SessionSecret   string
	DB              Database
	Storage         Storage
	PostsPerPage    int
	IndexCacheTTL   time.Duration
	CacheSize       int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("GIN_MODE", "release")
	v.SetDefault("SESSION_SECRET", "secret_key_change_me")

	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("DATABASE_URL", "host=localhost user=postgres password=postgres dbname=postboard port=5432 sslmode=disable")
	v.SetDefault("SQLITE_PATH", "postboard.db")

	v.SetDefault("STORAGE_BACKEND", "local")
	v.SetDefault("MEDIA_ROOT", "./media")
	v.SetDefault("MEDIA_URL", "/media/")
	v.SetDefault("MAX_UPLOAD_SIZE", 10*1024*1024)
	v.SetDefault("MINIO_ENDPOINT", "localhost:9000")
	v.SetDefault("MINIO_ACCESS_KEY", "minioadmin")
	v.SetDefault("MINIO_SECRET_KEY", "minioadmin")
	v.SetDefault("MINIO_BUCKET", "images")
	v.SetDefault("MINIO_USE_SSL", false)
	v.SetDefault("MINIO_PUBLIC_URL", "http://localhost:9000")

	v.SetDefault("POSTS_PER_PAGE", 10)
	v.SetDefault("INDEX_CACHE_TTL", "20s")
	v.SetDefault("CACHE_SIZE", 500)

	v.SetDefault("READ_TIMEOUT", "15s")
	v.SetDefault("WRITE_TIMEOUT", "30s")
	v.SetDefault("SHUTDOWN_TIMEOUT", "10s")
}

// Load reads .env (if present), the process environment and an optional
// config.yaml from the working directory or ./config.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, finding env vars from system")
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig() // optional

	return fromViper(v)
}

func fromViper(v *viper.Viper) *Config {
	perPage := v.GetInt("POSTS_PER_PAGE")
	if perPage <= 0 {
		perPage = 10
	}
	cacheSize := v.GetInt("CACHE_SIZE")
	if cacheSize <= 0 {
		cacheSize = 500
	}

	return &Config{
		Port:          v.GetString("PORT"),
		GinMode:       v.GetString("GIN_MODE"),
		SessionSecret: v.GetString("SESSION_SECRET"),
		DB: Database{
			Driver:     v.GetString("DB_DRIVER"),
			URL:        v.GetString("DATABASE_URL"),
			SQLitePath: v.GetString("SQLITE_PATH"),
		},
		Storage: Storage{
			Backend:       v.GetString("STORAGE_BACKEND"),
			MediaRoot:     v.GetString("MEDIA_ROOT"),
			MediaURL:      v.GetString("MEDIA_URL"),
			MaxUploadSize: v.GetInt64("MAX_UPLOAD_SIZE"),
			MinIO: MinIO{
				Endpoint:  v.GetString("MINIO_ENDPOINT"),
				AccessKey: v.GetString("MINIO_ACCESS_KEY"),
				SecretKey: v.GetString("MINIO_SECRET_KEY"),
				Bucket:    v.GetString("MINIO_BUCKET"),
				UseSSL:    v.GetBool("MINIO_USE_SSL"),
				PublicURL: v.GetString("MINIO_PUBLIC_URL"),
			},
		},
		PostsPerPage:    perPage,
		IndexCacheTTL:   parseDuration(v.GetString("INDEX_CACHE_TTL"), 20*time.Second),
		CacheSize:       cacheSize,
		ReadTimeout:     parseDuration(v.GetString("READ_TIMEOUT"), 15*time.Second),
		WriteTimeout:    parseDuration(v.GetString("WRITE_TIMEOUT"), 30*time.Second),
		ShutdownTimeout: parseDuration(v.GetString("SHUTDOWN_TIMEOUT"), 10*time.Second),
	}
}

func parseDuration(s string, def time.Duration) time.Duration {
	if d, err := time.ParseDuration(s); err == nil {
		return d
	}
	return def
}
