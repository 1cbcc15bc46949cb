package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Veraticus/the-books-must-balance/internal/common"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultValues(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	v := viper.New()
	SetDefaults(v)

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".local/share/books/books.db"), cfg.Database.Path)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.Equal(t, 50, cfg.Ledger.PersonTransactionLimit)
	assert.Equal(t, "shopping", cfg.Import.ExpenseCategory)
	assert.Equal(t, "salary", cfg.Import.IncomeCategory)
	assert.Equal(t, "default-account", cfg.Import.Account)
	assert.Equal(t, "owner", cfg.Import.Person)
}

func TestSetup_ConfigFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	cfgFile := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte(`
database:
  path: /tmp/ledger.db
logging:
  level: debug
ledger:
  person_transaction_limit: 10
import:
  account: card
`), 0600))

	t.Setenv("BOOKS_LOGGING_FORMAT", "json")

	v := viper.New()
	require.NoError(t, Setup(v, cfgFile))

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/ledger.db", cfg.Database.Path)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, 10, cfg.Ledger.PersonTransactionLimit)
	assert.Equal(t, "card", cfg.Import.Account)
	assert.Equal(t, "owner", cfg.Import.Person)
}

func TestSetup_SearchPathWithoutFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	v := viper.New()
	require.NoError(t, Setup(v, ""))

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestConfig_Validate(t *testing.T) {
	valid := Config{
		Database: DatabaseConfig{Path: "/tmp/books.db"},
		Logging:  LoggingConfig{Level: "info", Format: "console"},
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		mutate  func(*Config)
		wantErr error
		name    string
	}{
		{name: "empty path", mutate: func(c *Config) { c.Database.Path = " " }, wantErr: common.ErrMissingConfig},
		{name: "bad level", mutate: func(c *Config) { c.Logging.Level = "loud" }, wantErr: common.ErrInvalidConfig},
		{name: "bad format", mutate: func(c *Config) { c.Logging.Format = "xml" }, wantErr: common.ErrInvalidConfig},
		{name: "negative limit", mutate: func(c *Config) { c.Ledger.PersonTransactionLimit = -1 }, wantErr: common.ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), tt.wantErr)
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("BOOKS_TEST_DOTENV=loaded\n"), 0600))
	t.Setenv("BOOKS_TEST_DOTENV", "")
	require.NoError(t, os.Unsetenv("BOOKS_TEST_DOTENV"))

	require.NoError(t, LoadDotEnv(filepath.Join(dir, "missing.env"), envFile))
	assert.Equal(t, "loaded", os.Getenv("BOOKS_TEST_DOTENV"))
}

func TestExpandPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("BOOKS_DIR", "/data")

	tests := []struct {
		in   string
		want string
	}{
		{in: "", want: ""},
		{in: "~", want: home},
		{in: "~/books.db", want: filepath.Join(home, "books.db")},
		{in: "$BOOKS_DIR/books.db", want: "/data/books.db"},
		{in: "/abs/books.db", want: "/abs/books.db"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ExpandPath(tt.in))
		})
	}
}
