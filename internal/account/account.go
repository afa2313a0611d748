// Package account holds the signed-in user's state: credentials, session
// token, language pair and the saved-word tree.
//
// The session orchestrator is the only writer. Readers on other goroutines
// get snapshot copies.
package account

import (
	"errors"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/mrlokans/zeeguu/internal/entities"
	"github.com/mrlokans/zeeguu/internal/metrics"
	"github.com/mrlokans/zeeguu/internal/wordtree"
)

// ErrIncompleteLogin is returned when a session token is set without both
// email and password.
var ErrIncompleteLogin = errors.New("session token requires email and password")

// CredentialStore persists credentials and languages.
type CredentialStore interface {
	LoadCredentials() (entities.Credentials, error)
	SaveCredentials(creds entities.Credentials) error
	ClearCredentials() error
	LoadLanguages() (entities.Languages, error)
	SaveLanguages(langs entities.Languages) error
}

// WordCache persists the last fetched word tree per account.
type WordCache interface {
	LoadWords(email string) ([]entities.DayGroup, error)
	SaveWords(email string, tree []entities.DayGroup) error
}

// Account is the in-memory account state. Persistence is best effort: store
// failures are logged and the in-memory state stays authoritative.
type Account struct {
	store CredentialStore
	cache WordCache

	mu    sync.RWMutex
	creds entities.Credentials
	langs entities.Languages
	tree  []entities.DayGroup
}

// New creates an empty account backed by store and cache. Either may be nil.
func New(store CredentialStore, cache WordCache) *Account {
	return &Account{store: store, cache: cache}
}

// Load restores credentials and languages from the store. The word tree is
// restored lazily with LoadWordsFromCache.
func (a *Account) Load() {
	if a.store == nil {
		return
	}

	creds, err := a.store.LoadCredentials()
	if err != nil {
		log.Printf("Failed to load credentials: %v", err)
	}
	langs, err := a.store.LoadLanguages()
	if err != nil {
		log.Printf("Failed to load languages: %v", err)
	}

	// A token without a complete login is unusable.
	if creds.Email == "" || creds.Password == "" {
		creds.SessionToken = ""
	}

	a.mu.Lock()
	a.creds = creds
	a.langs = langs
	a.mu.Unlock()
}

// Email returns the account email, or "" when logged out.
func (a *Account) Email() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.creds.Email
}

// Password returns the stored password.
func (a *Account) Password() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.creds.Password
}

// SessionToken returns the session token, or "" when not in session.
func (a *Account) SessionToken() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.creds.SessionToken
}

// Languages returns the current language pair.
func (a *Account) Languages() entities.Languages {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.langs
}

// NativeLanguage returns the native language code, or "" when unset.
func (a *Account) NativeLanguage() string {
	return a.Languages().Native
}

// LearningLanguage returns the learning language code, or "" when unset.
func (a *Account) LearningLanguage() string {
	return a.Languages().Learning
}

// IsLoggedIn reports whether both email and password are known.
func (a *Account) IsLoggedIn() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.creds.Email != "" && a.creds.Password != ""
}

// IsInSession reports whether a session token is held. The token may still
// have expired server side.
func (a *Account) IsInSession() bool {
	return a.SessionToken() != ""
}

// IsLanguageSet reports whether both languages are known.
func (a *Account) IsLanguageSet() bool {
	return a.Languages().IsSet()
}

// SetLogin replaces the login triple in one step.
func (a *Account) SetLogin(email, password, token string) error {
	if token != "" && (email == "" || password == "") {
		return ErrIncompleteLogin
	}
	a.mu.Lock()
	a.creds = entities.Credentials{Email: email, Password: password, SessionToken: token}
	a.mu.Unlock()
	return nil
}

// SaveLogin persists the current credentials.
func (a *Account) SaveLogin() {
	if a.store == nil {
		return
	}
	a.mu.RLock()
	creds := a.creds
	a.mu.RUnlock()

	if err := a.store.SaveCredentials(creds); err != nil {
		log.Printf("Failed to save credentials: %v", err)
	}
}

// ClearLogin forgets the credentials in memory and in the store.
func (a *Account) ClearLogin() {
	a.mu.Lock()
	a.creds = entities.Credentials{}
	a.mu.Unlock()

	if a.store == nil {
		return
	}
	if err := a.store.ClearCredentials(); err != nil {
		log.Printf("Failed to clear credentials: %v", err)
	}
}

// SetNativeLanguage sets the native language without persisting it.
func (a *Account) SetNativeLanguage(lang string) {
	a.mu.Lock()
	a.langs.Native = lang
	a.mu.Unlock()
}

// SetLearningLanguage sets the learning language without persisting it.
func (a *Account) SetLearningLanguage(lang string) {
	a.mu.Lock()
	a.langs.Learning = lang
	a.mu.Unlock()
}

// SetLanguages overwrites both languages without persisting them.
func (a *Account) SetLanguages(langs entities.Languages) {
	a.mu.Lock()
	a.langs = langs
	a.mu.Unlock()
}

// SaveLanguages persists the current language pair, whatever it is.
func (a *Account) SaveLanguages() {
	if a.store == nil {
		return
	}
	if err := a.store.SaveLanguages(a.Languages()); err != nil {
		log.Printf("Failed to save languages: %v", err)
	}
}

// Words returns a deep copy of the word tree.
func (a *Account) Words() []entities.DayGroup {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return entities.CloneTree(a.tree)
}

// WordCount returns the number of word entries in the tree.
func (a *Account) WordCount() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return wordtree.CountWords(a.tree)
}

// FindWord looks a word up by id.
func (a *Account) FindWord(id int64) (entities.WordEntry, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return wordtree.Find(a.tree, id)
}

// ReplaceWords swaps in a freshly built tree and writes it to the cache.
func (a *Account) ReplaceWords(tree []entities.DayGroup) {
	a.mu.Lock()
	a.tree = tree
	a.mu.Unlock()

	metrics.SetWordCount(wordtree.CountWords(tree))
	a.saveWords(tree)
}

// RemoveWord drops a single entry after a confirmed delete.
func (a *Account) RemoveWord(id int64) bool {
	a.mu.Lock()
	tree, removed := wordtree.Remove(a.tree, id)
	if removed {
		a.tree = tree
	}
	a.mu.Unlock()

	if removed {
		metrics.SetWordCount(wordtree.CountWords(tree))
		a.saveWords(tree)
	}
	return removed
}

// ClearWords drops the in-memory tree. The cache is left alone.
func (a *Account) ClearWords() {
	a.mu.Lock()
	a.tree = nil
	a.mu.Unlock()
	metrics.SetWordCount(0)
}

// LoadWordsFromCache replaces the tree with the cached snapshot for the
// current email. It reports whether a cached tree was found.
func (a *Account) LoadWordsFromCache() bool {
	if a.cache == nil {
		return false
	}
	tree, err := a.cache.LoadWords(a.Email())
	if err != nil {
		log.Printf("Failed to load cached words: %v", err)
		return false
	}
	if tree == nil {
		return false
	}

	a.mu.Lock()
	a.tree = tree
	a.mu.Unlock()
	metrics.SetWordCount(wordtree.CountWords(tree))
	return true
}

func (a *Account) saveWords(tree []entities.DayGroup) {
	if a.cache == nil {
		return
	}
	if err := a.cache.SaveWords(a.Email(), tree); err != nil {
		log.Printf("Failed to cache words: %v", err)
	}
}
