package session

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mrlokans/zeeguu/internal/account"
	"github.com/mrlokans/zeeguu/internal/entities"
	"github.com/mrlokans/zeeguu/internal/transport"
)

type pendingRequest struct {
	req       transport.Request
	onSuccess func([]byte)
	onFailure func(error)
}

// fakeRequester records requests and lets the test resolve them on its own
// goroutine, which stands in for the executor.
type fakeRequester struct {
	sent    []transport.Request
	pending []*pendingRequest
}

func (f *fakeRequester) Send(req transport.Request, onSuccess func([]byte), onFailure func(error)) {
	f.sent = append(f.sent, req)
	f.pending = append(f.pending, &pendingRequest{req: req, onSuccess: onSuccess, onFailure: onFailure})
}

func (f *fakeRequester) paths() []string {
	out := make([]string, len(f.sent))
	for i, r := range f.sent {
		out[i] = r.Path
	}
	return out
}

func (f *fakeRequester) countPrefix(prefix string) int {
	n := 0
	for _, r := range f.sent {
		if strings.HasPrefix(r.Path, prefix) {
			n++
		}
	}
	return n
}

func (f *fakeRequester) take(t *testing.T, prefix string) *pendingRequest {
	t.Helper()
	for i, p := range f.pending {
		if strings.HasPrefix(p.req.Path, prefix) {
			f.pending = append(f.pending[:i], f.pending[i+1:]...)
			return p
		}
	}
	require.Failf(t, "no pending request", "prefix %q, pending %v", prefix, f.paths())
	return nil
}

func (f *fakeRequester) succeed(t *testing.T, prefix, body string) transport.Request {
	t.Helper()
	p := f.take(t, prefix)
	p.onSuccess([]byte(body))
	return p.req
}

func (f *fakeRequester) fail(t *testing.T, prefix string, err error) {
	t.Helper()
	f.take(t, prefix).onFailure(err)
}

type recorder struct {
	events         []string
	difficulties   []entities.Difficulty
	learnabilities []entities.Learnability
	contents       []entities.Content
}

func (r *recorder) add(format string, args ...any) {
	r.events = append(r.events, fmt.Sprintf(format, args...))
}

func (r *recorder) ShowLoginDialog(title, email string) { r.add("login_dialog:%s|%s", title, email) }
func (r *recorder) ShowCreateAccountDialog(message, username, email string) {
	r.add("create_dialog:%s|%s|%s", message, username, email)
}
func (r *recorder) LoginSucceeded()                { r.add("login_succeeded") }
func (r *recorder) SetTranslation(text string)     { r.add("translation:%s", text) }
func (r *recorder) Highlight(word string)          { r.add("highlight:%s", word) }
func (r *recorder) DisplayMessage(message string)  { r.add("message:%s", message) }
func (r *recorder) NotifyDataChanged(changed bool) { r.add("data_changed:%t", changed) }
func (r *recorder) BookmarkWord(id string)         { r.add("bookmark:%s", id) }
func (r *recorder) DisplayError(message string, transient bool) {
	r.add("error:%s|%t", message, transient)
}
func (r *recorder) SetDifficulties(d []entities.Difficulty) {
	r.add("difficulties:%d", len(d))
	r.difficulties = d
}
func (r *recorder) SetLearnabilities(l []entities.Learnability) {
	r.add("learnabilities:%d", len(l))
	r.learnabilities = l
}
func (r *recorder) SetContents(c []entities.Content) {
	r.add("contents:%d", len(c))
	r.contents = c
}

type memoryStore struct {
	creds     entities.Credentials
	langs     entities.Languages
	langSaves []entities.Languages
	cleared   int
}

func (m *memoryStore) LoadCredentials() (entities.Credentials, error) { return m.creds, nil }
func (m *memoryStore) SaveCredentials(c entities.Credentials) error {
	m.creds = c
	return nil
}
func (m *memoryStore) ClearCredentials() error {
	m.cleared++
	m.creds = entities.Credentials{}
	return nil
}
func (m *memoryStore) LoadLanguages() (entities.Languages, error) { return m.langs, nil }
func (m *memoryStore) SaveLanguages(l entities.Languages) error {
	m.langs = l
	m.langSaves = append(m.langSaves, l)
	return nil
}

type memoryCache struct {
	trees map[string][]entities.DayGroup
}

func (m *memoryCache) LoadWords(email string) ([]entities.DayGroup, error) {
	return m.trees[email], nil
}

func (m *memoryCache) SaveWords(email string, tree []entities.DayGroup) error {
	m.trees[email] = tree
	return nil
}

type switchNetwork struct {
	up bool
}

func (s *switchNetwork) Available() bool { return s.up }

type fixture struct {
	manager   *Manager
	requester *fakeRequester
	callbacks *recorder
	store     *memoryStore
	cache     *memoryCache
	network   *switchNetwork
	account   *account.Account
}

const (
	testEmail    = "anna@example.com"
	testPassword = "hunter2"
	testToken    = "token-1"
)

// newFixture creates a manager whose account holds the given credentials and
// languages, online, with every request left pending.
func newFixture(t *testing.T, creds entities.Credentials, langs entities.Languages) *fixture {
	t.Helper()
	f := &fixture{
		requester: &fakeRequester{},
		callbacks: &recorder{},
		store:     &memoryStore{creds: creds, langs: langs},
		cache:     &memoryCache{trees: map[string][]entities.DayGroup{}},
		network:   &switchNetwork{up: true},
	}
	f.account = account.New(f.store, f.cache)
	f.account.Load()

	m, err := New(Options{
		Account:   f.account,
		Requester: f.requester,
		Network:   f.network,
		Callbacks: f.callbacks,
	})
	require.NoError(t, err)
	f.manager = m
	return f
}

func inSession() entities.Credentials {
	return entities.Credentials{Email: testEmail, Password: testPassword, SessionToken: testToken}
}

func loggedInNoSession() entities.Credentials {
	return entities.Credentials{Email: testEmail, Password: testPassword}
}

func englishGerman() entities.Languages {
	return entities.Languages{Native: "en", Learning: "de"}
}

const wordsPayload = `[
	{"date": "2024-01-01", "bookmarks": [
		{"id": 1, "from": "Haus", "from_lang": "de", "to": ["house"], "to_lang": "en", "title": "A", "url": "https://a.example", "context": "Das Haus"},
		{"id": 2, "from": "Baum", "from_lang": "de", "to": ["tree"], "to_lang": "en", "title": "A", "url": "https://a.example", "context": "Der Baum"},
		{"id": 3, "from": "Hund", "from_lang": "de", "to": ["dog", "hound"], "to_lang": "en", "title": "B", "url": "https://b.example", "context": "Der Hund"}
	]}
]`
