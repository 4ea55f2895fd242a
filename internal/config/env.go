// Package config loads both binaries' settings from the environment, after
// an optional .env file, plus the terminal's network candidate file.
package config

import (
	"strings"
	"sync"

	"github.com/joho/godotenv"
)

const envPrefix = "ROLLCALL"

var dotenvOnce sync.Once

// loadDotEnv reads ./.env once per process.  A missing file is not an error.
func loadDotEnv() {
	dotenvOnce.Do(func() { _ = godotenv.Load() })
}

func splitCSV(v string) []string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
