// internal/config/config.go
package config

import (
	"os"
	"strconv"
)

// GetEnv reads an environment variable or returns a default value. The
// binaries load .env files through godotenv/autoload before this runs.
func GetEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

// GetEnvInt parses an environment variable as an integer, else a default.
func GetEnvInt(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

// GamePort returns the port game servers listen on.
func GamePort() int { return GetEnvInt("PONTOON_PORT", 50000) }

// RegistryPort returns the well-known directory service port.
func RegistryPort() int { return GetEnvInt("REGISTRY_PORT", 50001) }

// RegistryAddr returns the directory service address clients and servers
// talk to, defaulting to the local well-known port.
func RegistryAddr() string {
	return GetEnv("REGISTRY_ADDR", "localhost:"+strconv.Itoa(RegistryPort()))
}

// RegistryTTLSec returns how long a registered host stays listed without a
// heartbeat.
func RegistryTTLSec() int { return GetEnvInt("REGISTRY_TTL_SEC", 15) }

// ReadTimeoutSec bounds a single blocking session read so an unresponsive
// peer cannot pin its goroutine forever.
func ReadTimeoutSec() int { return GetEnvInt("PONTOON_READ_TIMEOUT_SEC", 300) }
