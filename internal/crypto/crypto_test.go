package crypto

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEncryptor(t *testing.T) *Encryptor {
	t.Helper()
	key, err := GenerateKey()
	require.NoError(t, err)
	enc, err := NewEncryptorFromBase64(key)
	require.NoError(t, err)
	return enc
}

func TestNewEncryptor(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		wantErr error
	}{
		{"aes-256 key", 32, nil},
		{"too short", 16, ErrInvalidKeySize},
		{"too long", 64, ErrInvalidKeySize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enc, err := NewEncryptor(make([]byte, tt.size))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, enc)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, enc)
		})
	}
}

func TestNewEncryptorFromBase64(t *testing.T) {
	t.Run("invalid base64", func(t *testing.T) {
		enc, err := NewEncryptorFromBase64("not-valid-base64!!!")
		assert.Error(t, err)
		assert.Nil(t, enc)
	})

	t.Run("wrong size", func(t *testing.T) {
		_, err := NewEncryptorFromBase64(base64.StdEncoding.EncodeToString(make([]byte, 16)))
		assert.ErrorIs(t, err, ErrInvalidKeySize)
	})
}

func TestNewEncryptorFromPassphrase(t *testing.T) {
	salt, err := GenerateSalt()
	require.NoError(t, err)
	assert.Len(t, salt, SaltSize)

	t.Run("same passphrase and salt open each other's values", func(t *testing.T) {
		a, err := NewEncryptorFromPassphrase("correct horse", salt)
		require.NoError(t, err)
		b, err := NewEncryptorFromPassphrase("correct horse", salt)
		require.NoError(t, err)

		sealed, err := a.Encrypt("session-token")
		require.NoError(t, err)
		opened, err := b.Decrypt(sealed)
		require.NoError(t, err)
		assert.Equal(t, "session-token", opened)
	})

	t.Run("different passphrase fails", func(t *testing.T) {
		a, _ := NewEncryptorFromPassphrase("one", salt)
		b, _ := NewEncryptorFromPassphrase("two", salt)

		sealed, err := a.Encrypt("secret")
		require.NoError(t, err)
		_, err = b.Decrypt(sealed)
		assert.ErrorIs(t, err, ErrDecryptionFailed)
	})

	t.Run("empty passphrase", func(t *testing.T) {
		_, err := NewEncryptorFromPassphrase("", salt)
		assert.ErrorIs(t, err, ErrEmptyPassphrase)
	})
}

func TestEncryptDecrypt(t *testing.T) {
	enc := newTestEncryptor(t)

	for _, plaintext := range []string{"hunter2", "sess-0123456789abcdef", "Привет 日本語"} {
		sealed, err := enc.Encrypt(plaintext)
		require.NoError(t, err)
		assert.NotEqual(t, plaintext, sealed)

		opened, err := enc.Decrypt(sealed)
		require.NoError(t, err)
		assert.Equal(t, plaintext, opened)
	}

	t.Run("empty stays empty", func(t *testing.T) {
		sealed, err := enc.Encrypt("")
		require.NoError(t, err)
		assert.Empty(t, sealed)

		opened, err := enc.Decrypt("")
		require.NoError(t, err)
		assert.Empty(t, opened)
	})

	t.Run("random nonce", func(t *testing.T) {
		a, _ := enc.Encrypt("same")
		b, _ := enc.Encrypt("same")
		assert.NotEqual(t, a, b)
	})
}

func TestDecryptErrors(t *testing.T) {
	enc := newTestEncryptor(t)

	t.Run("invalid base64", func(t *testing.T) {
		_, err := enc.Decrypt("not-valid-base64!!!")
		assert.Error(t, err)
	})

	t.Run("too short", func(t *testing.T) {
		_, err := enc.Decrypt(base64.StdEncoding.EncodeToString([]byte("short")))
		assert.ErrorIs(t, err, ErrCiphertextTooShort)
	})

	t.Run("tampered", func(t *testing.T) {
		sealed, err := enc.Encrypt("secret")
		require.NoError(t, err)

		data, _ := base64.StdEncoding.DecodeString(sealed)
		data[len(data)-1] ^= 0xFF
		_, err = enc.Decrypt(base64.StdEncoding.EncodeToString(data))
		assert.ErrorIs(t, err, ErrDecryptionFailed)
	})

	t.Run("other key", func(t *testing.T) {
		sealed, err := enc.Encrypt("secret")
		require.NoError(t, err)

		_, err = newTestEncryptor(t).Decrypt(sealed)
		assert.ErrorIs(t, err, ErrDecryptionFailed)
	})
}
