package credstore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/zeeguu/internal/crypto"
	"github.com/mrlokans/zeeguu/internal/entities"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()

	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	store, err := New(Config{
		DatabasePath:  filepath.Join(t.TempDir(), "account.db"),
		EncryptionKey: key,
	})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestNew(t *testing.T) {
	t.Run("invalid key", func(t *testing.T) {
		_, err := New(Config{
			DatabasePath:  filepath.Join(t.TempDir(), "account.db"),
			EncryptionKey: "invalid-key",
		})
		assert.Error(t, err)
	})

	t.Run("generates key file next to database", func(t *testing.T) {
		t.Setenv(EnvEncryptionKey, "")
		dir := t.TempDir()

		store, err := New(Config{DatabasePath: filepath.Join(dir, "account.db")})
		require.NoError(t, err)
		defer store.Close()

		_, err = os.Stat(filepath.Join(dir, DefaultKeyFileName))
		assert.NoError(t, err)
	})

	t.Run("passphrase key survives reopen", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "account.db")

		store, err := New(Config{DatabasePath: dbPath, Passphrase: "open sesame"})
		require.NoError(t, err)
		require.NoError(t, store.SaveCredentials(entities.Credentials{
			Email: "a@b.c", Password: "pw", SessionToken: "tok",
		}))
		require.NoError(t, store.Close())

		reopened, err := New(Config{DatabasePath: dbPath, Passphrase: "open sesame"})
		require.NoError(t, err)
		defer reopened.Close()

		creds, err := reopened.LoadCredentials()
		require.NoError(t, err)
		assert.Equal(t, "pw", creds.Password)
		assert.Equal(t, "tok", creds.SessionToken)
	})
}

func TestCredentials(t *testing.T) {
	store := setupTestStore(t)

	t.Run("empty store", func(t *testing.T) {
		creds, err := store.LoadCredentials()
		require.NoError(t, err)
		assert.Equal(t, entities.Credentials{}, creds)
	})

	t.Run("save and load", func(t *testing.T) {
		want := entities.Credentials{Email: "user@example.com", Password: "secret", SessionToken: "42abc"}
		require.NoError(t, store.SaveCredentials(want))

		got, err := store.LoadCredentials()
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("secrets are not stored in plain text", func(t *testing.T) {
		var v entities.StoredValue
		require.NoError(t, store.db.Where("key = ?", entities.StoredKeyPassword).First(&v).Error)
		assert.True(t, v.Secret)
		assert.NotEqual(t, "secret", v.Value)
	})

	t.Run("overwrite token", func(t *testing.T) {
		require.NoError(t, store.SaveCredentials(entities.Credentials{Email: "user@example.com", Password: "secret", SessionToken: "99"}))

		got, err := store.LoadCredentials()
		require.NoError(t, err)
		assert.Equal(t, "99", got.SessionToken)
	})

	t.Run("clear keeps languages", func(t *testing.T) {
		require.NoError(t, store.SaveLanguages(entities.Languages{Native: "en", Learning: "de"}))
		require.NoError(t, store.ClearCredentials())

		creds, err := store.LoadCredentials()
		require.NoError(t, err)
		assert.Equal(t, entities.Credentials{}, creds)

		langs, err := store.LoadLanguages()
		require.NoError(t, err)
		assert.Equal(t, entities.Languages{Native: "en", Learning: "de"}, langs)
	})
}

func TestLanguages(t *testing.T) {
	store := setupTestStore(t)

	langs, err := store.LoadLanguages()
	require.NoError(t, err)
	assert.False(t, langs.IsSet())

	require.NoError(t, store.SaveLanguages(entities.Languages{Native: "en", Learning: "fr"}))
	require.NoError(t, store.SaveLanguages(entities.Languages{Native: "en"}))

	langs, err = store.LoadLanguages()
	require.NoError(t, err)
	assert.Equal(t, entities.Languages{Native: "en"}, langs)
}

func TestPing(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	store, err := New(Config{
		DatabasePath:  filepath.Join(t.TempDir(), "account.db"),
		EncryptionKey: key,
	})
	require.NoError(t, err)

	assert.NoError(t, store.Ping())

	require.NoError(t, store.Close())
	assert.Error(t, store.Ping())
}
