package config

// Default locations, relative to the data directory unless set explicitly.
const (
	// DefaultDataDir holds the credential database, task database and word cache
	DefaultDataDir = "~/.zeeguu"

	// DefaultDatabaseName is the credential database file name
	DefaultDatabaseName = "zeeguu.db"

	// DefaultCacheDirName is the word cache directory name
	DefaultCacheDirName = "words"

	// DefaultConfigName is the optional config file name, without extension
	DefaultConfigName = "config"
)
