// Package envconfig reads process-level settings from MAXTEXT_* environment
// variables. These control the tooling around the sharding core (server
// address, logging, default config file), never the sharding semantics
// themselves, which come from the configuration document.
package envconfig

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

var (
	// Set via MAXTEXT_HOST in the environment
	Host string
	// Set via MAXTEXT_DEBUG in the environment
	Debug bool
	// Set via MAXTEXT_CONFIG in the environment
	ConfigPath string
	// Set via MAXTEXT_ORIGINS in the environment
	AllowOrigins []string
)

type EnvVar struct {
	Name        string
	Value       any
	Description string
}

func AsMap() map[string]EnvVar {
	return map[string]EnvVar{
		"MAXTEXT_HOST":    {"MAXTEXT_HOST", Host, "Address for the inspection server (default 127.0.0.1:11435)"},
		"MAXTEXT_DEBUG":   {"MAXTEXT_DEBUG", Debug, "Show additional debug information (e.g. MAXTEXT_DEBUG=1)"},
		"MAXTEXT_CONFIG":  {"MAXTEXT_CONFIG", ConfigPath, "Default configuration document path"},
		"MAXTEXT_ORIGINS": {"MAXTEXT_ORIGINS", AllowOrigins, "A comma separated list of allowed origins"},
	}
}

func Values() map[string]string {
	vals := make(map[string]string)
	for k, v := range AsMap() {
		vals[k] = fmt.Sprintf("%v", v.Value)
	}
	return vals
}

// Clean quotes and spaces from the value
func clean(key string) string {
	return strings.Trim(os.Getenv(key), "\"' ")
}

func init() {
	LoadConfig()
}

func LoadConfig() {
	Host = "127.0.0.1:11435"
	if host := clean("MAXTEXT_HOST"); host != "" {
		Host = host
	}

	Debug = false
	if debug := clean("MAXTEXT_DEBUG"); debug != "" {
		d, err := strconv.ParseBool(debug)
		if err == nil {
			Debug = d
		} else {
			Debug = true
		}
	}

	ConfigPath = clean("MAXTEXT_CONFIG")

	AllowOrigins = nil
	if origins := clean("MAXTEXT_ORIGINS"); origins != "" {
		AllowOrigins = strings.Split(origins, ",")
	}
	for _, allowOrigin := range []string{"localhost", "127.0.0.1", "0.0.0.0"} {
		AllowOrigins = append(AllowOrigins,
			fmt.Sprintf("http://%s", allowOrigin),
			fmt.Sprintf("https://%s", allowOrigin),
		)
	}
}

// LogLevel returns the slog level selected by the environment.
func LogLevel() slog.Level {
	if Debug {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}
