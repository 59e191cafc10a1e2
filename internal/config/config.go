package config

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/Skotchmaster/sweet_shop/pkg/config"
)

const (
	defaultPort        = "8000"
	defaultDatabaseURL = "sqlite://sweetshop.db"
	defaultAPIURL      = "http://localhost:8000"
)

type ServerConfig struct {
	Port           string
	DatabaseURL    string
	JWTSecret      []byte
	TokenTTL       time.Duration
	AdminEmail     string
	KafkaBrokers   []string
	ESURL          string
	ESUser         string
	ESPassword     string
	SeedFile       string
	LogLevel       string
	AllowedOrigins []string
}

// LoadEnv loads the given .env files when present; the process environment wins.
func LoadEnv(files ...string) {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !os.IsNotExist(err) {
			log.Printf("warning: could not load %s: %v", f, err)
		}
	}
}

func LoadServer() (ServerConfig, error) {
	cfg := ServerConfig{
		Port:           config.EnvDefault("SERVER_PORT", defaultPort),
		DatabaseURL:    config.EnvDefault("DATABASE_URL", defaultDatabaseURL),
		JWTSecret:      []byte(os.Getenv("JWT_SECRET")),
		TokenTTL:       config.EnvMinutesDefault("ACCESS_TOKEN_EXPIRE_MINUTES", 30*time.Minute),
		AdminEmail:     strings.TrimSpace(os.Getenv("ADMIN_EMAIL")),
		KafkaBrokers:   config.CSV(os.Getenv("KAFKA_BROKERS")),
		ESURL:          os.Getenv("ES_URL"),
		ESUser:         os.Getenv("ES_USER"),
		ESPassword:     os.Getenv("ES_PASSWORD"),
		SeedFile:       os.Getenv("SEED_FILE"),
		LogLevel:       config.EnvDefault("LOG_LEVEL", "info"),
		AllowedOrigins: config.CSV(config.EnvDefault("ALLOWED_ORIGINS", "*")),
	}
	if err := config.Required(map[string]string{"JWT_SECRET": string(cfg.JWTSecret)}); err != nil {
		return ServerConfig{}, err
	}
	return cfg, nil
}

type ClientConfig struct {
	APIURL   string
	Home     string
	Theme    string
	LogLevel string
}

func LoadClient() ClientConfig {
	home := os.Getenv("SHOP_HOME")
	if home == "" {
		if dir, err := os.UserHomeDir(); err == nil {
			home = filepath.Join(dir, ".sweetshop")
		} else {
			home = ".sweetshop"
		}
	}
	return ClientConfig{
		APIURL:   strings.TrimRight(config.EnvDefault("SHOP_API_URL", defaultAPIURL), "/"),
		Home:     home,
		Theme:    config.EnvDefault("SHOP_THEME", "light"),
		LogLevel: config.EnvDefault("SHOP_LOG_LEVEL", "warn"),
	}
}
