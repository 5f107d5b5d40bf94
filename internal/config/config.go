package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port      string
	DBDSN     string
	JWTSecret string
	JWTTTL    time.Duration
	MediaDir  string
	LogFile   string
}

func Load() Config {
	_ = godotenv.Load()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		dsn = "shopfront.db" // sqlite file in project root
	}
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "dev-only-secret-change-me"
		log.Println("[config] JWT_SECRET not set, using insecure dev default")
	}
	ttl := time.Hour
	if v := os.Getenv("JWT_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			ttl = d
		} else {
			log.Printf("[config] invalid JWT_TTL %q, using %s", v, ttl)
		}
	}
	media := os.Getenv("MEDIA_DIR")
	if media == "" {
		media = "./web/media"
	}
	logFile := os.Getenv("LOG_FILE")

	cfg := Config{Port: port, DBDSN: dsn, JWTSecret: secret, JWTTTL: ttl, MediaDir: media, LogFile: logFile}
	log.Printf("[config] PORT=%s DB_DSN=%s JWT_TTL=%s MEDIA_DIR=%s", cfg.Port, cfg.DBDSN, cfg.JWTTTL, cfg.MediaDir)
	return cfg
}
