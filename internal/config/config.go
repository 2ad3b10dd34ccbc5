package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	DBPath    string
	OutputDir string

	HTTPAddr string

	FetchTimeoutMs int

	AdminID   string
	AdminPass string

	AuthTTLDays int

	SheetHostMarker string

	WatermarkText string
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		DBPath:    getEnv("DB_PATH", filepath.Join(cwd, "data", "app.db")),
		OutputDir: getEnv("OUTPUT_DIR", filepath.Join(cwd, "out")),

		HTTPAddr: getEnv("HTTP_ADDR", ":8080"),

		FetchTimeoutMs: getEnvInt("FETCH_TIMEOUT_MS", 30000),

		AdminID:   getEnv("ADMIN_ID", "inventory"),
		AdminPass: getEnv("ADMIN_PASS", "rmpl@123"),

		AuthTTLDays: getEnvInt("AUTH_TTL_DAYS", 30),

		SheetHostMarker: getEnv("SHEET_HOST_MARKER", "docs.google.com/spreadsheets"),

		WatermarkText: getEnv("WATERMARK_TEXT", "Design created by Arshad Ali"),
	}

	return cfg, nil
}

func (c Config) Require(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("missing required env var: %s", name)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
