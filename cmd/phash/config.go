package main

import (
	"os"
	"runtime"
	"strconv"
)

// Defaults for the command line flags, overridable from the environment.
type config struct {
	Workers   int    // PHASH_WORKERS
	Threshold int    // PHASH_THRESHOLD, max distance still reported as similar
	LogLevel  string // PHASH_LOG_LEVEL
}

func loadConfig() config {
	return config{
		Workers:   getEnvInt("PHASH_WORKERS", runtime.NumCPU()),
		Threshold: getEnvInt("PHASH_THRESHOLD", 10),
		LogLevel:  getEnv("PHASH_LOG_LEVEL", "warn"),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}
