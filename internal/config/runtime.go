package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Runtime struct {
	HTTPAddr         string
	MaxIterations    int
	DOTCacheMaxItems int
	ObsBuffer        int
	LogLevel         string
	LogFormat        string
}

// Load reads the runtime settings from the environment. A .env file in the
// working directory is loaded first when present; real environment
// variables win over its entries.
func Load() Runtime {
	_ = godotenv.Load()
	return fromEnv()
}

func fromEnv() Runtime {
	return Runtime{
		HTTPAddr:         getenv("HTTP_ADDR", ":8080"),
		MaxIterations:    getenvInt("WORKFLOW_MAX_ITERATIONS", 100, 1),
		DOTCacheMaxItems: getenvInt("WORKFLOW_DOT_CACHE_MAX_ITEMS", 1024, 1),
		ObsBuffer:        getenvInt("WORKFLOW_OBS_BUFFER", 4096, 1),
		LogLevel:         strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogFormat:        strings.ToLower(getenv("LOG_FORMAT", "text")),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback, min int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < min {
		return fallback
	}
	return v
}
