// Package config provides configuration management for pomo.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
	"github.com/xvierd/pomo/internal/domain"
)

// defaultDataDir is expanded against the home directory on load.
const defaultDataDir = "~/.pomo"

// Config holds all configuration for the pomo application.
type Config struct {
	Pomodoro      PomodoroConfig     `mapstructure:"pomodoro"`
	Notifications NotificationConfig `mapstructure:"notifications"`
	MCP           MCPConfig          `mapstructure:"mcp"`
	Storage       StorageConfig      `mapstructure:"storage"`
	Theme         ThemeConfig        `mapstructure:"theme"`
}

// ThemeConfig holds theme customization settings (colors and icons).
type ThemeConfig struct {
	ColorWork           string `mapstructure:"color_work"`
	ColorBreak          string `mapstructure:"color_break"`
	ColorPaused         string `mapstructure:"color_paused"`
	ColorTitle          string `mapstructure:"color_title"`
	ColorHelp           string `mapstructure:"color_help"`
	WorkGradientStart   string `mapstructure:"work_gradient_start"`
	WorkGradientEnd     string `mapstructure:"work_gradient_end"`
	BreakGradientStart  string `mapstructure:"break_gradient_start"`
	BreakGradientEnd    string `mapstructure:"break_gradient_end"`
	PausedGradientStart string `mapstructure:"paused_gradient_start"`
	PausedGradientEnd   string `mapstructure:"paused_gradient_end"`
	IconApp             string `mapstructure:"icon_app"`
	IconStats           string `mapstructure:"icon_stats"`
	IconPaused          string `mapstructure:"icon_paused"`
}

// DefaultThemeConfig returns the default theme configuration.
func DefaultThemeConfig() ThemeConfig {
	return ThemeConfig{
		ColorWork:           "#7C6FE0",
		ColorBreak:          "#4ECDC4",
		ColorPaused:         "#6B7280",
		ColorTitle:          "#6B7280",
		ColorHelp:           "#95A5A6",
		WorkGradientStart:   "#7C6FE0",
		WorkGradientEnd:     "#A78BFA",
		BreakGradientStart:  "#4ECDC4",
		BreakGradientEnd:    "#2ECC71",
		PausedGradientStart: "#6B7280",
		PausedGradientEnd:   "#4B5563",
		IconApp:             "🍅",
		IconStats:           "📊",
		IconPaused:          "⏸",
	}
}

// PomodoroConfig seeds the timer settings of a fresh store. Once settings
// were saved from inside the app, the persisted ones win.
type PomodoroConfig struct {
	WorkDuration       Duration `mapstructure:"work_duration"`
	ShortBreak         Duration `mapstructure:"short_break"`
	LongBreak          Duration `mapstructure:"long_break"`
	SessionsBeforeLong int      `mapstructure:"sessions_before_long"`
	AutoStartBreaks    bool     `mapstructure:"auto_start_breaks"`
	AutoStartWork      bool     `mapstructure:"auto_start_work"`
}

// NotificationConfig holds notification settings.
type NotificationConfig struct {
	Enabled bool    `mapstructure:"enabled"`
	Sound   bool    `mapstructure:"sound"`
	Volume  float64 `mapstructure:"volume"`
}

// MCPConfig holds MCP server settings.
type MCPConfig struct {
	Enabled      bool     `mapstructure:"enabled"`
	TickInterval Duration `mapstructure:"tick_interval"`
}

// StorageConfig holds storage settings.
type StorageConfig struct {
	DataDir string `mapstructure:"data_dir"`
}

// Duration is a wrapper around time.Duration for TOML parsing.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	duration, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(duration)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// String returns the string representation of the duration.
func (d Duration) String() string {
	return time.Duration(d).String()
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Pomodoro: PomodoroConfig{
			WorkDuration:       Duration(25 * time.Minute),
			ShortBreak:         Duration(5 * time.Minute),
			LongBreak:          Duration(15 * time.Minute),
			SessionsBeforeLong: 4,
		},
		Notifications: NotificationConfig{
			Enabled: true,
			Sound:   true,
			Volume:  0.7,
		},
		MCP: MCPConfig{
			Enabled:      true,
			TickInterval: Duration(time.Second),
		},
		Storage: StorageConfig{
			DataDir: defaultDataDir,
		},
		Theme: DefaultThemeConfig(),
	}
}

// Load loads the configuration from ~/.pomo/config.toml, creating it with
// defaults on first run.
func Load() (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, fmt.Errorf("failed to get config path: %w", err)
	}
	return LoadFrom(configPath)
}

// LoadFrom loads the configuration from the given TOML file.
func LoadFrom(configPath string) (*Config, error) {
	// Ensure config directory exists
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	// If config file doesn't exist, create it with defaults
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := SaveTo(configPath, DefaultConfig()); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
	}

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("toml")
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.TextUnmarshallerHookFunc(),
		mapstructure.StringToTimeDurationHookFunc(),
	))
	if err := v.Unmarshal(&cfg, hook); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	dataDir, err := expandHome(cfg.Storage.DataDir)
	if err != nil {
		return nil, err
	}
	cfg.Storage.DataDir = dataDir

	return &cfg, nil
}

// Save saves the configuration to ~/.pomo/config.toml.
func Save(cfg *Config) error {
	configPath, err := GetConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}
	return SaveTo(configPath, cfg)
}

// SaveTo writes the configuration to the given TOML file.
func SaveTo(configPath string, cfg *Config) error {
	// Ensure config directory exists
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("toml")

	// Set all values
	v.Set("pomodoro.work_duration", cfg.Pomodoro.WorkDuration.String())
	v.Set("pomodoro.short_break", cfg.Pomodoro.ShortBreak.String())
	v.Set("pomodoro.long_break", cfg.Pomodoro.LongBreak.String())
	v.Set("pomodoro.sessions_before_long", cfg.Pomodoro.SessionsBeforeLong)
	v.Set("pomodoro.auto_start_breaks", cfg.Pomodoro.AutoStartBreaks)
	v.Set("pomodoro.auto_start_work", cfg.Pomodoro.AutoStartWork)
	v.Set("notifications.enabled", cfg.Notifications.Enabled)
	v.Set("notifications.sound", cfg.Notifications.Sound)
	v.Set("notifications.volume", cfg.Notifications.Volume)
	v.Set("mcp.enabled", cfg.MCP.Enabled)
	v.Set("mcp.tick_interval", cfg.MCP.TickInterval.String())
	v.Set("storage.data_dir", cfg.Storage.DataDir)
	v.Set("theme.color_work", cfg.Theme.ColorWork)
	v.Set("theme.color_break", cfg.Theme.ColorBreak)
	v.Set("theme.color_paused", cfg.Theme.ColorPaused)
	v.Set("theme.color_title", cfg.Theme.ColorTitle)
	v.Set("theme.color_help", cfg.Theme.ColorHelp)
	v.Set("theme.work_gradient_start", cfg.Theme.WorkGradientStart)
	v.Set("theme.work_gradient_end", cfg.Theme.WorkGradientEnd)
	v.Set("theme.break_gradient_start", cfg.Theme.BreakGradientStart)
	v.Set("theme.break_gradient_end", cfg.Theme.BreakGradientEnd)
	v.Set("theme.paused_gradient_start", cfg.Theme.PausedGradientStart)
	v.Set("theme.paused_gradient_end", cfg.Theme.PausedGradientEnd)
	v.Set("theme.icon_app", cfg.Theme.IconApp)
	v.Set("theme.icon_stats", cfg.Theme.IconStats)
	v.Set("theme.icon_paused", cfg.Theme.IconPaused)

	return v.WriteConfig()
}

// GetConfigPath returns the path to the config file.
func GetConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".pomo", "config.toml"), nil
}

// GetDBPath returns the path to the database file.
func GetDBPath(cfg *Config) string {
	return filepath.Join(cfg.Storage.DataDir, "pomo.db")
}

// ToSettings converts the seed section into domain settings. Durations are
// truncated to whole minutes; the result is not validated.
func (c *Config) ToSettings() domain.Settings {
	s := domain.DefaultSettings()
	s.WorkDuration = int(time.Duration(c.Pomodoro.WorkDuration) / time.Minute)
	s.ShortBreakDuration = int(time.Duration(c.Pomodoro.ShortBreak) / time.Minute)
	s.LongBreakDuration = int(time.Duration(c.Pomodoro.LongBreak) / time.Minute)
	s.SessionsBeforeLongBreak = c.Pomodoro.SessionsBeforeLong
	s.AutoStartBreaks = c.Pomodoro.AutoStartBreaks
	s.AutoStartWork = c.Pomodoro.AutoStartWork
	s.SoundEnabled = c.Notifications.Sound
	s.NotificationEnabled = c.Notifications.Enabled
	s.Volume = c.Notifications.Volume
	return s
}

// expandHome resolves a leading ~ against the user's home directory.
func expandHome(dir string) (string, error) {
	if dir == "" {
		dir = defaultDataDir
	}
	if dir != "~" && !strings.HasPrefix(dir, "~/") {
		return dir, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, strings.TrimPrefix(dir, "~")), nil
}

// setDefaults sets default values for viper.
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("pomodoro.work_duration", d.Pomodoro.WorkDuration.String())
	v.SetDefault("pomodoro.short_break", d.Pomodoro.ShortBreak.String())
	v.SetDefault("pomodoro.long_break", d.Pomodoro.LongBreak.String())
	v.SetDefault("pomodoro.sessions_before_long", d.Pomodoro.SessionsBeforeLong)
	v.SetDefault("pomodoro.auto_start_breaks", false)
	v.SetDefault("pomodoro.auto_start_work", false)
	v.SetDefault("notifications.enabled", d.Notifications.Enabled)
	v.SetDefault("notifications.sound", d.Notifications.Sound)
	v.SetDefault("notifications.volume", d.Notifications.Volume)
	v.SetDefault("mcp.enabled", d.MCP.Enabled)
	v.SetDefault("mcp.tick_interval", d.MCP.TickInterval.String())
	v.SetDefault("storage.data_dir", defaultDataDir)

	// Theme defaults
	v.SetDefault("theme.color_work", d.Theme.ColorWork)
	v.SetDefault("theme.color_break", d.Theme.ColorBreak)
	v.SetDefault("theme.color_paused", d.Theme.ColorPaused)
	v.SetDefault("theme.color_title", d.Theme.ColorTitle)
	v.SetDefault("theme.color_help", d.Theme.ColorHelp)
	v.SetDefault("theme.work_gradient_start", d.Theme.WorkGradientStart)
	v.SetDefault("theme.work_gradient_end", d.Theme.WorkGradientEnd)
	v.SetDefault("theme.break_gradient_start", d.Theme.BreakGradientStart)
	v.SetDefault("theme.break_gradient_end", d.Theme.BreakGradientEnd)
	v.SetDefault("theme.paused_gradient_start", d.Theme.PausedGradientStart)
	v.SetDefault("theme.paused_gradient_end", d.Theme.PausedGradientEnd)
	v.SetDefault("theme.icon_app", d.Theme.IconApp)
	v.SetDefault("theme.icon_stats", d.Theme.IconStats)
	v.SetDefault("theme.icon_paused", d.Theme.IconPaused)
}
