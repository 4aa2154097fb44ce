// Package config resolves runtime settings from flags, environment
// variables, an optional .env file and an optional inventar.yaml.
//
// Precedence, highest first: flag, environment, config file, default.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Keys.
const (
	KeyDB    = "db"
	KeyAddr  = "addr"
	KeyLog   = "log"
	KeyUser  = "user"
	KeyAdmin = "admin"
)

const (
	envPrefix      = "INVENTAR"
	configFileName = "inventar"
	configFileType = "yaml"
)

// Defaults.
const (
	DefaultDB    = "inventar.sqlite3"
	DefaultAddr  = ":8080"
	DefaultAdmin = "admin"
)

// Config holds the resolved settings.
type Config struct {
	DB    string // SQLite database path
	Addr  string // HTTP listen address
	Log   string // optional log file
	User  string // acting user recorded on CLI writes
	Admin string // username of the first admin created by init
}

// New returns a viper instance with defaults and INVENTAR_* environment
// binding. Callers bind their flags to it before calling Load.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyDB, DefaultDB)
	v.SetDefault(KeyAddr, DefaultAddr)
	v.SetDefault(KeyLog, "")
	v.SetDefault(KeyUser, defaultUser())
	v.SetDefault(KeyAdmin, DefaultAdmin)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the env files (".env" when none are given; missing files are
// skipped) and the config file, then returns the merged settings. An
// explicit configFile must exist; otherwise inventar.yaml is searched in
// the working directory and $HOME/.config/inventar.
func Load(v *viper.Viper, configFile string, envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, path := range envFiles {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading %s: %w", path, err)
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(configFileName)
		v.SetConfigType(configFileType)
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "inventar"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	cfg := &Config{
		DB:    strings.TrimSpace(v.GetString(KeyDB)),
		Addr:  strings.TrimSpace(v.GetString(KeyAddr)),
		Log:   strings.TrimSpace(v.GetString(KeyLog)),
		User:  strings.TrimSpace(v.GetString(KeyUser)),
		Admin: strings.TrimSpace(v.GetString(KeyAdmin)),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports missing required settings.
func (c *Config) Validate() error {
	switch {
	case c.DB == "":
		return errors.New("config: db path is empty")
	case c.Addr == "":
		return errors.New("config: listen address is empty")
	case c.User == "":
		return errors.New("config: acting user is empty")
	case c.Admin == "":
		return errors.New("config: admin username is empty")
	}
	return nil
}

func defaultUser() string {
	if user := os.Getenv("USER"); user != "" {
		return user
	}
	return DefaultAdmin
}
