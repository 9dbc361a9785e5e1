package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestLoadFromYAML(t *testing.T) {
	path := writeConfig(t, `
creditor:
  api_key: creditor-token
  proxy_category_id: 20
  repayment_account_id: 7
  email_address: me@example.com
debtor:
  api_key: debtor-token
  repayment_account_id: 8
  venmo_username: debtor-user
storage:
  database_path: batches.db
observability:
  logging:
    level: debug
    format: json
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "creditor-token", cfg.Creditor.APIKey)
	assert.Equal(t, int64(20), cfg.Creditor.ProxyCategoryID)
	assert.Equal(t, int64(7), cfg.Creditor.RepaymentAccountID)
	assert.Equal(t, "debtor-user", cfg.Debtor.VenmoUsername)
	assert.Equal(t, "batches.db", cfg.Storage.DatabasePath)
	assert.Equal(t, "debug", cfg.Observability.Logging.Level)
	assert.NoError(t, cfg.Validate())
}

func TestLoadExpandsEnvironmentVariables(t *testing.T) {
	t.Setenv("TEST_CREDITOR_TOKEN", "expanded-token")

	path := writeConfig(t, `
creditor:
  api_key: ${TEST_CREDITOR_TOKEN}
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "expanded-token", cfg.Creditor.APIKey)
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
creditor:
  api_key: a
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "eq-to-batch", cfg.Tags.Batch)
	assert.Equal(t, "eq-to-split", cfg.Tags.Split)
	assert.Equal(t, "https://dev.lunchmoney.app", cfg.Ledger.BaseURL)
	assert.Equal(t, "equalizer.db", cfg.Storage.DatabasePath)
	assert.Equal(t, "info", cfg.Observability.Logging.Level)
	assert.Equal(t, "text", cfg.Observability.Logging.Format)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("CREDITOR_LEDGER_TOKEN", "c-token")
	t.Setenv("DEBTOR_LEDGER_TOKEN", "d-token")
	t.Setenv("CREDITOR_PROXY_CATEGORY_ID", "20")
	t.Setenv("CREDITOR_REPAYMENT_ACCOUNT_ID", "7")
	t.Setenv("DEBTOR_REPAYMENT_ACCOUNT_ID", "8")
	t.Setenv("EQUALIZER_DB_PATH", "env.db")

	cfg := LoadFromEnv()
	assert.Equal(t, "c-token", cfg.Creditor.APIKey)
	assert.Equal(t, "d-token", cfg.Debtor.APIKey)
	assert.Equal(t, int64(20), cfg.Creditor.ProxyCategoryID)
	assert.Equal(t, "env.db", cfg.Storage.DatabasePath)
	assert.NoError(t, cfg.Validate())
}

func TestLoadOrEnvFallsBack(t *testing.T) {
	t.Setenv("CREDITOR_LEDGER_TOKEN", "fallback-token")

	cfg := LoadOrEnvWithPath(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Equal(t, "fallback-token", cfg.Creditor.APIKey)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Creditor: CreditorConfig{APIKey: "a", ProxyCategoryID: 20, RepaymentAccountID: 7},
			Debtor:   DebtorConfig{APIKey: "b", RepaymentAccountID: 8},
			Tags:     TagsConfig{Batch: "eq-to-batch", Split: "eq-to-split"},
		}
	}

	assert.NoError(t, valid().Validate())

	missingCreditorKey := valid()
	missingCreditorKey.Creditor.APIKey = ""
	assert.ErrorContains(t, missingCreditorKey.Validate(), "creditor.api_key")

	missingCategory := valid()
	missingCategory.Creditor.ProxyCategoryID = 0
	assert.ErrorContains(t, missingCategory.Validate(), "proxy_category_id")

	sameTags := valid()
	sameTags.Tags.Split = sameTags.Tags.Batch
	assert.ErrorContains(t, sameTags.Validate(), "must differ")
}
