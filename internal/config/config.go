// Package config reads the service configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// Store backends.
const (
	StoreMySQL = "mysql"
	StoreMongo = "mongo"
)

// Config holds all settings of the service.
type Config struct {
	Port       int
	Origin     string
	Store      string
	DBUser     string
	DBPwd      string
	DBHost     string
	DBName     string
	MongoURI   string
	PhotoDir   string
	TrustProxy bool
	GinLogging bool
	LogLevel   log.Level
}

// LoadEnv loads a .env file into the environment when one exists. Variables already set win.
func LoadEnv(files ...string) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, file := range files {
		if _, err := os.Stat(file); err != nil {
			continue
		}
		if err := godotenv.Load(file); err != nil {
			log.Warnf("could not load %s: %s", file, err)
			continue
		}
		log.Infof("%s file loaded.", file)
	}
}

// Load reads the configuration from the environment.
//
// Usage example on the command line:
// > PORT=8080 STORE=mysql DBHOST=localhost DBUSER=dirk DBPWD=bullo92 ORIGIN=https://cards.example.com go run main.go
func Load() (Config, error) {
	cfg := Config{
		Origin:     strings.TrimRight(os.Getenv("ORIGIN"), "/"),
		Store:      strings.ToLower(getenv("STORE", StoreMySQL)),
		DBUser:     os.Getenv("DBUSER"),
		DBPwd:      os.Getenv("DBPWD"),
		DBHost:     os.Getenv("DBHOST"),
		DBName:     getenv("DBNAME", "test"),
		MongoURI:   os.Getenv("MONGODB_URI"),
		PhotoDir:   getenv("PHOTO_DIR", "./photos"),
		GinLogging: !strings.EqualFold(os.Getenv("GIN_LOGGING"), "off"),
	}

	port, err := strconv.Atoi(os.Getenv("PORT"))
	if err != nil || port < 1 || port > 65535 {
		return cfg, fmt.Errorf("could not parse PORT env variable %q", os.Getenv("PORT"))
	}
	cfg.Port = port

	switch cfg.Store {
	case StoreMySQL:
	case StoreMongo:
		if cfg.MongoURI == "" {
			return cfg, fmt.Errorf("STORE=%s requires MONGODB_URI", StoreMongo)
		}
	default:
		return cfg, fmt.Errorf("unknown STORE %q", cfg.Store)
	}

	if value := os.Getenv("TRUST_PROXY"); value != "" {
		cfg.TrustProxy, err = strconv.ParseBool(value)
		if err != nil {
			return cfg, fmt.Errorf("invalid TRUST_PROXY %q", value)
		}
	}
	if cfg.Origin == "" && !cfg.TrustProxy {
		log.Warn("ORIGIN is not set, links are built from the Host header of each request")
	}

	cfg.LogLevel = log.InfoLevel
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		cfg.LogLevel, err = log.ParseLevel(level)
		if err != nil {
			return cfg, fmt.Errorf("invalid LOG_LEVEL: %w", err)
		}
	}
	return cfg, nil
}

// Logging configures the global logger.
func (c Config) Logging() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	log.SetLevel(c.LogLevel)
}

func getenv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
