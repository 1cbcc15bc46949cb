package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/Veraticus/the-books-must-balance/internal/common"
	"github.com/Veraticus/the-books-must-balance/internal/model"
	"github.com/Veraticus/the-books-must-balance/internal/service"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable override, e.g.
// BOOKS_DATABASE_PATH.
const EnvPrefix = "BOOKS"

// DefaultDatabasePath is used when database.path is unset.
const DefaultDatabasePath = "$HOME/.local/share/books/books.db"

// Config is the typed view of the application configuration.
type Config struct {
	Database DatabaseConfig
	Logging  LoggingConfig
	Import   ImportConfig
	Ledger   LedgerConfig
}

// DatabaseConfig locates the ledger database.
type DatabaseConfig struct {
	Path string
}

// LoggingConfig configures slog.
type LoggingConfig struct {
	Level  string
	Format string
}

// LedgerConfig tunes the ledger facade.
type LedgerConfig struct {
	PersonTransactionLimit int
}

// ImportConfig holds the defaults applied to imported statement lines.
type ImportConfig struct {
	ExpenseCategory string
	IncomeCategory  string
	Account         string
	Person          string
}

// SetDefaults registers every default on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("database.path", DefaultDatabasePath)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("ledger.person_transaction_limit", service.DefaultPersonTransactionLimit)
	v.SetDefault("import.expense_category", "shopping")
	v.SetDefault("import.income_category", "salary")
	v.SetDefault("import.account", model.DefaultAccountID)
	v.SetDefault("import.person", model.OwnerPersonID)
}

// Setup prepares v to read cfgFile, or config.yaml from
// $HOME/.config/books and the working directory when cfgFile is empty.
// Environment variables with EnvPrefix override file values.
func Setup(v *viper.Viper, cfgFile string) error {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		v.AddConfigPath(filepath.Join(home, ".config", "books"))
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}
	return nil
}

// LoadDotEnv loads variables from the given .env files into the process
// environment without overriding ones already set. Missing files are
// skipped.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
		slog.Debug("loaded environment file", "path", path)
	}
	return nil
}

// Load builds a Config from v and validates it.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Database: DatabaseConfig{
			Path: ExpandPath(v.GetString("database.path")),
		},
		Logging: LoggingConfig{
			Level:  v.GetString("logging.level"),
			Format: v.GetString("logging.format"),
		},
		Ledger: LedgerConfig{
			PersonTransactionLimit: v.GetInt("ledger.person_transaction_limit"),
		},
		Import: ImportConfig{
			ExpenseCategory: v.GetString("import.expense_category"),
			IncomeCategory:  v.GetString("import.income_category"),
			Account:         v.GetString("import.account"),
			Person:          v.GetString("import.person"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports the first unusable setting.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Database.Path) == "" {
		return fmt.Errorf("%w: database.path", common.ErrMissingConfig)
	}
	if _, err := common.ParseLevel(c.Logging.Level); err != nil {
		return err
	}
	switch c.Logging.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("%w: logging.format %q", common.ErrInvalidConfig, c.Logging.Format)
	}
	if c.Ledger.PersonTransactionLimit < 0 {
		return fmt.Errorf("%w: ledger.person_transaction_limit must not be negative", common.ErrInvalidConfig)
	}
	return nil
}
