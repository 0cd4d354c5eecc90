// Package config resolves connection and output settings from flags,
// environment variables, .env files and an optional config file.
package config

import (
	"errors"
	"fmt"
	"net"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment variables, e.g. MIGRATIONGEN_PASSWORD
const EnvPrefix = "MIGRATIONGEN"

// Keys shared by flags, environment variables and the config file
const (
	KeyUsername        = "username"
	KeyPassword        = "password"
	KeyHost            = "host"
	KeyPort            = "port"
	KeyDatabase        = "database"
	KeyOutputDirectory = "output-directory"
	KeyVerbose         = "verbose"
)

// AppFs is the file system used for .env lookups
var AppFs = afero.NewOsFs()

var envKeyReplacer = strings.NewReplacer("-", "_")

// Config holds the settings of one run
type Config struct {
	Username        string
	Password        string
	Host            string
	Port            int
	Database        string
	OutputDirectory string
	Verbose         bool
}

// Load resolves the configuration. Precedence, highest first: explicitly set
// flags, MIGRATIONGEN_* environment variables (including those loaded from
// .env), the config file, flag defaults.
func Load(v *viper.Viper, flags *pflag.FlagSet, configFile string) (*Config, error) {
	if _, err := AppFs.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("failed to load .env: %w", err)
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			return nil, err
		}
		v.SetConfigName(".migrationgen")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(home)
		v.AddConfigPath(filepath.Join(home, ".config", "migrationgen"))
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(envKeyReplacer)
	v.AutomaticEnv()

	if err := v.BindPFlags(flags); err != nil {
		return nil, fmt.Errorf("failed to bind flags: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := &Config{
		Username:        v.GetString(KeyUsername),
		Password:        v.GetString(KeyPassword),
		Host:            v.GetString(KeyHost),
		Port:            v.GetInt(KeyPort),
		Database:        v.GetString(KeyDatabase),
		OutputDirectory: v.GetString(KeyOutputDirectory),
		Verbose:         v.GetBool(KeyVerbose),
	}

	return cfg, cfg.Validate()
}

// Validate checks the settings required to start a run
func (c *Config) Validate() error {
	if c.Database == "" {
		return fmt.Errorf("database name is required (--%s or %s_DATABASE)", KeyDatabase, EnvPrefix)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if c.OutputDirectory == "" {
		return fmt.Errorf("output directory is required (--%s)", KeyOutputDirectory)
	}
	return nil
}

// MySQL returns the driver configuration for the credentials
func (c *Config) MySQL() *mysql.Config {
	cfg := mysql.NewConfig()
	cfg.User = c.Username
	cfg.Passwd = c.Password
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
	cfg.DBName = c.Database
	return cfg
}
