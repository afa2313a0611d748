// Package credstore persists the account's login information and language
// selection in SQLite. The password and session token are stored encrypted.
package credstore

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/zeeguu/internal/crypto"
	"github.com/mrlokans/zeeguu/internal/entities"
)

const (
	// EnvEncryptionKey is the environment variable for the encryption key
	EnvEncryptionKey = "ZEEGUU_ENCRYPTION_KEY"

	// DefaultKeyFileName is the key file created next to the database when no key is configured
	DefaultKeyFileName = ".zeeguu-key"

	saltKey = "encryption_salt"
)

// Store implements the account's credential persistence.
type Store struct {
	db        *gorm.DB
	encryptor *crypto.Encryptor
}

// Config holds configuration for the store
type Config struct {
	// DatabasePath is the path to the SQLite database file
	DatabasePath string

	// EncryptionKey is a base64 encoded 32-byte key. Takes precedence over everything else.
	EncryptionKey string

	// Passphrase derives the key with argon2id when no explicit key is given.
	// The salt is generated once and kept in the database.
	Passphrase string

	// KeyFilePath is where a generated key is kept. Defaults to a file next to the database.
	KeyFilePath string
}

// New opens (and migrates) the database and resolves the encryption key.
func New(cfg Config) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(cfg.DatabasePath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.AutoMigrate(&entities.StoredValue{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	s := &Store{db: db}
	if s.encryptor, err = s.resolveEncryptor(cfg); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("failed to set up encryption: %w", err)
	}
	return s, nil
}

// resolveEncryptor picks the key source: explicit key, passphrase, environment, key file.
func (s *Store) resolveEncryptor(cfg Config) (*crypto.Encryptor, error) {
	if cfg.EncryptionKey != "" {
		return crypto.NewEncryptorFromBase64(cfg.EncryptionKey)
	}

	if cfg.Passphrase != "" {
		salt, err := s.salt()
		if err != nil {
			return nil, err
		}
		return crypto.NewEncryptorFromPassphrase(cfg.Passphrase, salt)
	}

	if envKey := os.Getenv(EnvEncryptionKey); envKey != "" {
		return crypto.NewEncryptorFromBase64(envKey)
	}

	keyFilePath := cfg.KeyFilePath
	if keyFilePath == "" {
		keyFilePath = filepath.Join(filepath.Dir(cfg.DatabasePath), DefaultKeyFileName)
	}

	if data, err := os.ReadFile(keyFilePath); err == nil {
		return crypto.NewEncryptorFromBase64(string(data))
	}

	key, err := crypto.GenerateKey()
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(keyFilePath, []byte(key), 0600); err != nil {
		return nil, fmt.Errorf("failed to save encryption key to %s: %w", keyFilePath, err)
	}
	log.Infof("Generated new encryption key at %s", keyFilePath)

	return crypto.NewEncryptorFromBase64(key)
}

// salt returns the stored argon2 salt, creating it on first use.
func (s *Store) salt() ([]byte, error) {
	encoded, ok, err := s.get(saltKey)
	if err != nil {
		return nil, err
	}
	if ok {
		return base64.StdEncoding.DecodeString(encoded)
	}

	salt, err := crypto.GenerateSalt()
	if err != nil {
		return nil, err
	}
	if err := s.put(saltKey, base64.StdEncoding.EncodeToString(salt), false); err != nil {
		return nil, err
	}
	return salt, nil
}

// LoadCredentials returns the stored login triple. Missing values are empty.
func (s *Store) LoadCredentials() (entities.Credentials, error) {
	var creds entities.Credentials
	var err error

	if creds.Email, err = s.getPlain(entities.StoredKeyEmail); err != nil {
		return entities.Credentials{}, err
	}
	if creds.Password, err = s.getSecret(entities.StoredKeyPassword); err != nil {
		return entities.Credentials{}, err
	}
	if creds.SessionToken, err = s.getSecret(entities.StoredKeySessionToken); err != nil {
		return entities.Credentials{}, err
	}
	return creds, nil
}

// SaveCredentials writes all three login values in one transaction.
func (s *Store) SaveCredentials(creds entities.Credentials) error {
	password, err := s.encryptor.Encrypt(creds.Password)
	if err != nil {
		return fmt.Errorf("failed to encrypt password: %w", err)
	}
	token, err := s.encryptor.Encrypt(creds.SessionToken)
	if err != nil {
		return fmt.Errorf("failed to encrypt session token: %w", err)
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		for _, v := range []entities.StoredValue{
			{Key: entities.StoredKeyEmail, Value: creds.Email},
			{Key: entities.StoredKeyPassword, Value: password, Secret: true},
			{Key: entities.StoredKeySessionToken, Value: token, Secret: true},
		} {
			if err := upsert(tx, v); err != nil {
				return fmt.Errorf("failed to save %s: %w", v.Key, err)
			}
		}
		return nil
	})
}

// ClearCredentials removes the login values. Languages are kept.
func (s *Store) ClearCredentials() error {
	result := s.db.Where("key IN ?", []string{
		entities.StoredKeyEmail,
		entities.StoredKeyPassword,
		entities.StoredKeySessionToken,
	}).Delete(&entities.StoredValue{})
	if result.Error != nil {
		return fmt.Errorf("failed to clear credentials: %w", result.Error)
	}
	return nil
}

// LoadLanguages returns the stored language selection.
func (s *Store) LoadLanguages() (entities.Languages, error) {
	native, err := s.getPlain(entities.StoredKeyNativeLanguage)
	if err != nil {
		return entities.Languages{}, err
	}
	learning, err := s.getPlain(entities.StoredKeyLearningLanguage)
	if err != nil {
		return entities.Languages{}, err
	}
	return entities.Languages{Native: native, Learning: learning}, nil
}

// SaveLanguages writes both language values, including empty ones.
func (s *Store) SaveLanguages(langs entities.Languages) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := upsert(tx, entities.StoredValue{Key: entities.StoredKeyNativeLanguage, Value: langs.Native}); err != nil {
			return fmt.Errorf("failed to save native language: %w", err)
		}
		if err := upsert(tx, entities.StoredValue{Key: entities.StoredKeyLearningLanguage, Value: langs.Learning}); err != nil {
			return fmt.Errorf("failed to save learning language: %w", err)
		}
		return nil
	})
}

// Ping checks that the database is still reachable.
func (s *Store) Ping() error {
	db, err := s.db.DB()
	if err != nil {
		return err
	}
	return db.Ping()
}

// Close closes the database connection
func (s *Store) Close() error {
	db, err := s.db.DB()
	if err != nil {
		return err
	}
	return db.Close()
}

func (s *Store) getPlain(key string) (string, error) {
	v, _, err := s.get(key)
	return v, err
}

func (s *Store) getSecret(key string) (string, error) {
	v, ok, err := s.get(key)
	if err != nil || !ok {
		return "", err
	}
	plain, err := s.encryptor.Decrypt(v)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt %s: %w", key, err)
	}
	return plain, nil
}

func (s *Store) get(key string) (string, bool, error) {
	var v entities.StoredValue
	err := s.db.Where("key = ?", key).First(&v).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return v.Value, true, nil
}

func (s *Store) put(key, value string, secret bool) error {
	return upsert(s.db, entities.StoredValue{Key: key, Value: value, Secret: secret})
}

func upsert(db *gorm.DB, v entities.StoredValue) error {
	var existing entities.StoredValue
	err := db.Where("key = ?", v.Key).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return db.Create(&v).Error
	}
	if err != nil {
		return err
	}
	return db.Model(&existing).Updates(map[string]interface{}{
		"value":  v.Value,
		"secret": v.Secret,
	}).Error
}
