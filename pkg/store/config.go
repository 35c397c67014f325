package store

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// Config locates the preference store on disk.
type Config interface {
	BasePath() string
}

// Settings is the resolved configuration for every command.
type Settings struct {
	Path     string `json:"path"`
	Backend  string `json:"backend"`
	Timezone string `json:"timezone,omitempty"`
	LogLevel string `json:"logLevel,omitempty"`

	API    APISettings    `json:"api"`
	SQLite SQLiteSettings `json:"sqlite"`
	CalDAV CalDAVSettings `json:"caldav"`
	Remind RemindSettings `json:"remind"`
}

// APISettings points at the hubz REST API.
type APISettings struct {
	URL   string `json:"url"`
	Token string `json:"-"`
}

// SQLiteSettings configures the local backend.
type SQLiteSettings struct {
	Path string `json:"path"`
}

// CalDAVSettings configures the CalDAV backend.
type CalDAVSettings struct {
	URL      string `json:"url"`
	Username string `json:"username"`
	Password string `json:"-"`
	Calendar string `json:"calendar,omitempty"`
}

// RemindSettings configures the reminder sweep.
type RemindSettings struct {
	Lead     string `json:"lead"`
	Schedule string `json:"schedule"`
}

// BasePath implements Config.
func (s *Settings) BasePath() string {
	return s.Path
}

// Location resolves the display timezone, time.Local when unset.
func (s *Settings) Location() (*time.Location, error) {
	if strings.TrimSpace(s.Timezone) == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return nil, fmt.Errorf("store: timezone %q: %w", s.Timezone, err)
	}
	return loc, nil
}

// LoadConfig reads .hubz.yaml from $HUBZ_CONFIG_PATH, the working directory or
// the home directory, then applies HUBZ_* environment overrides.
func LoadConfig() (*Settings, error) {
	v := viper.New()
	v.SetDefault("path", "~/.hubz")
	v.SetDefault("backend", "rest")
	v.SetDefault("api.url", "http://localhost:8080/api")
	v.SetDefault("sqlite.path", "~/.hubz/hubz.db")
	v.SetDefault("remind.lead", "15m")
	v.SetDefault("remind.schedule", "* * * * *")
	v.SetDefault("log.level", "warn")

	v.SetConfigName(".hubz") // .yaml is implicit
	v.SetEnvPrefix("HUBZ")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if override := os.Getenv("HUBZ_CONFIG_PATH"); override != "" {
		v.AddConfigPath(override)
	}
	v.AddConfigPath("./")
	if home, err := homedir.Dir(); err == nil {
		v.AddConfigPath(home)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("store: read config: %w", err)
		}
	}

	s := &Settings{
		Path:     v.GetString("path"),
		Backend:  strings.ToLower(v.GetString("backend")),
		Timezone: v.GetString("timezone"),
		LogLevel: v.GetString("log.level"),
		API: APISettings{
			URL:   v.GetString("api.url"),
			Token: v.GetString("api.token"),
		},
		SQLite: SQLiteSettings{Path: v.GetString("sqlite.path")},
		CalDAV: CalDAVSettings{
			URL:      v.GetString("caldav.url"),
			Username: v.GetString("caldav.username"),
			Password: v.GetString("caldav.password"),
			Calendar: v.GetString("caldav.calendar"),
		},
		Remind: RemindSettings{
			Lead:     v.GetString("remind.lead"),
			Schedule: v.GetString("remind.schedule"),
		},
	}

	var err error
	if s.Path, err = homedir.Expand(s.Path); err != nil {
		return nil, fmt.Errorf("store: expand path: %w", err)
	}
	if s.SQLite.Path, err = homedir.Expand(s.SQLite.Path); err != nil {
		return nil, fmt.Errorf("store: expand sqlite path: %w", err)
	}
	return s, nil
}
