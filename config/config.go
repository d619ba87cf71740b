package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config holds all environment-driven settings. Values are read once at
// startup; services receive what they need through constructors.
type Config struct {
	Port int

	// Localization defaults used when a request carries no user config.
	TargetLang  string
	DefaultTone string

	// Provider credentials.
	TMDBAPIKey   string
	TMDBBearer   string
	OMDBAPIKey   string
	GeminiAPIKey string
	GeminiModel  string

	// Caching.
	CacheTTL          time.Duration
	CacheMaxItems     int
	TranslationDBPath string

	// Translation behavior toggles.
	DisableLangHeuristic bool
	EnforceTargetLang    bool
	AlwaysSourceEN       bool
	DebugTranslation     bool

	// Glossary.
	GlossaryPath string

	// Catalog aggregation.
	Pretranslate  bool
	RemoteAddons  []string
	RemoteRefresh time.Duration

	// Logging.
	LogPath string
}

// Load reads configuration from the environment, applying defaults.
func Load() Config {
	cwd, _ := os.Getwd()
	return Config{
		Port:        envInt("PORT", 7000),
		TargetLang:  envStr("TARGET_LANG", "pt-PT"),
		DefaultTone: envStr("DEFAULT_TONE", "natural"),

		TMDBAPIKey:   os.Getenv("TMDB_API_KEY"),
		TMDBBearer:   os.Getenv("TMDB_BEARER"),
		OMDBAPIKey:   os.Getenv("OMDB_API_KEY"),
		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		GeminiModel:  envStr("GEMINI_MODEL", "gemini-1.5-flash"),

		CacheTTL:          time.Duration(envInt("CACHE_TTL", 86400)) * time.Second,
		CacheMaxItems:     envInt("CACHE_MAX_ITEMS", 500),
		TranslationDBPath: os.Getenv("TRANSLATION_DB_PATH"),

		DisableLangHeuristic: envBool("DISABLE_LANG_HEURISTIC"),
		EnforceTargetLang:    envBool("ENFORCE_TARGET_LANG"),
		AlwaysSourceEN:       envBool("ALWAYS_SOURCE_EN"),
		DebugTranslation:     envBool("DEBUG_TRANSLATION"),

		GlossaryPath: envStr("GLOSSARY_PATH", filepath.Join(cwd, "glossary.json")),

		Pretranslate:  envBool("PRETRANSLATE"),
		RemoteAddons:  envList("REMOTE_ADDONS"),
		RemoteRefresh: time.Duration(envInt("REMOTE_REFRESH_SEC", 300)) * time.Second,

		LogPath: os.Getenv("LOG_PATH"),
	}
}

func envStr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

// envBool treats "1" and "true" as enabled, matching the flag convention of
// the rest of the stack.
func envBool(key string) bool {
	v := strings.TrimSpace(strings.ToLower(os.Getenv(key)))
	return v == "1" || v == "true"
}

// envList parses a comma-separated list, dropping empty entries.
func envList(key string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
