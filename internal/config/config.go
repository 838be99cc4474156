package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/yosuke-furukawa/json5/encoding/json5"
)

const (
	DirName          = "frelwatch"
	SettingsFileName = "config.json"
	ProxiesFileName  = "proxies.txt"
)

// Settings is the user-edited configuration: which category feeds to poll,
// the notification filters, quiet hours and the state backend. A zero or
// empty threshold means "no constraint".
type Settings struct {
	Development bool `json:"development"`
	AI          bool `json:"ai"`
	All         bool `json:"all"`

	Sound    bool `json:"sound"`
	Interval int  `json:"interval"`

	MinBudget        float64 `json:"min_budget"`
	MinHiringRate    float64 `json:"min_hiring_rate"`
	MaxDurationDays  int     `json:"max_duration_days"`
	MinClientAgeDays int     `json:"min_client_age_days"`
	KeywordsInclude  string  `json:"keywords_include"`
	KeywordsExclude  string  `json:"keywords_exclude"`

	QuietHoursEnabled bool   `json:"quiet_hours_enabled"`
	QuietHoursStart   string `json:"quiet_hours_start"`
	QuietHoursEnd     string `json:"quiet_hours_end"`

	StateBackend string `json:"state_backend"`
	RedisURL     string `json:"redis_url"`
}

func DefaultSettings() Settings {
	return Settings{
		Development:     true,
		AI:              true,
		All:             true,
		Sound:           true,
		Interval:        envInt("FRELWATCH_INTERVAL", 1),
		QuietHoursStart: "23:00",
		QuietHoursEnd:   "07:00",
		StateBackend:    envString("FRELWATCH_STATE_BACKEND", "file"),
		RedisURL:        envString("FRELWATCH_REDIS_URL", "redis://localhost:6379/0"),
	}
}

// CategoryEnabled reports whether a feed name from scraper.Categories is
// switched on.
func (s Settings) CategoryEnabled(name string) bool {
	switch name {
	case "development":
		return s.Development
	case "ai":
		return s.AI
	case "all":
		return s.All
	default:
		return false
	}
}

func ConfigDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, DirName), nil
}

func SettingsPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, SettingsFileName), nil
}

func ProxiesPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ProxiesFileName), nil
}

func Load() (Settings, error) {
	settings := DefaultSettings()
	path, err := SettingsPath()
	if err != nil {
		return settings, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return settings, nil
		}
		return settings, err
	}

	if len(strings.TrimSpace(string(data))) == 0 {
		return settings, nil
	}

	if err := json5.Unmarshal(data, &settings); err != nil {
		return settings, err
	}

	if settings.Interval <= 0 {
		settings.Interval = 1
	}
	return settings, nil
}

// Init writes default config.json and proxies.txt if they don't already exist.
func Init() ([]string, error) {
	var created []string

	dir, err := ConfigDir()
	if err != nil {
		return created, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return created, err
	}

	settingsPath := filepath.Join(dir, SettingsFileName)
	if _, err := os.Stat(settingsPath); errors.Is(err, os.ErrNotExist) {
		if err := writeSettings(settingsPath, DefaultSettings()); err != nil {
			return created, err
		}
		created = append(created, settingsPath)
	}

	proxiesPath := filepath.Join(dir, ProxiesFileName)
	if _, err := os.Stat(proxiesPath); errors.Is(err, os.ErrNotExist) {
		if err := os.WriteFile(proxiesPath, []byte(""), 0o644); err != nil {
			return created, err
		}
		created = append(created, proxiesPath)
	}

	return created, nil
}

func writeSettings(path string, settings Settings) error {
	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

func LoadProxies(flagValue string) ([]string, error) {
	if strings.TrimSpace(flagValue) != "" {
		return splitCSV(flagValue), nil
	}

	if env := strings.TrimSpace(os.Getenv("FRELWATCH_PROXIES")); env != "" {
		return splitCSV(env), nil
	}

	path, err := ProxiesPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var proxies []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		proxies = append(proxies, line)
	}
	return proxies, nil
}

func envString(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func envInt(key string, fallback int) int {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}
