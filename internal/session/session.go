// Package session is the connection manager for the zeeguu API. It gates every
// user operation on login, network and session state, acquires a session when
// one is missing and turns every server outcome into a Callbacks notification.
//
// All Manager methods must run on the executor goroutine. Callers on other
// goroutines go through Submit or Call.
package session

import (
	"errors"
	"net/url"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/mrlokans/zeeguu/internal/account"
	"github.com/mrlokans/zeeguu/internal/entities"
	"github.com/mrlokans/zeeguu/internal/metrics"
	"github.com/mrlokans/zeeguu/internal/netcheck"
	"github.com/mrlokans/zeeguu/internal/transport"
)

// acceptanceToken is the literal body some endpoints answer with on success.
const acceptanceToken = "OK"

// Requester sends a request asynchronously. Exactly one of onSuccess and
// onFailure runs, once, on the executor goroutine.
type Requester interface {
	Send(req transport.Request, onSuccess func([]byte), onFailure func(error))
}

// Options holds the Manager's collaborators.
type Options struct {
	Account   *account.Account
	Requester Requester
	Network   netcheck.Monitor
	Callbacks Callbacks

	// Executor defaults to Inline, Offloader to InlineOffloader.
	Executor  Executor
	Offloader Offloader
	Messages  Messages
}

// Manager is the session orchestrator.
type Manager struct {
	account   *account.Account
	requester Requester
	network   netcheck.Monitor
	callbacks Callbacks
	executor  Executor
	offloader Offloader
	msgs      Messages

	memo selectionMemo

	// acquiring holds the email of the session request in flight, if any.
	acquiring string
}

// New creates a Manager.
func New(opts Options) (*Manager, error) {
	switch {
	case opts.Account == nil:
		return nil, errors.New("session: account is required")
	case opts.Requester == nil:
		return nil, errors.New("session: requester is required")
	case opts.Network == nil:
		return nil, errors.New("session: network monitor is required")
	case opts.Callbacks == nil:
		return nil, errors.New("session: callbacks are required")
	}

	m := &Manager{
		account:   opts.Account,
		requester: opts.Requester,
		network:   opts.Network,
		callbacks: opts.Callbacks,
		executor:  opts.Executor,
		offloader: opts.Offloader,
		msgs:      opts.Messages.withDefaults(),
	}
	if m.executor == nil {
		m.executor = Inline{}
	}
	if m.offloader == nil {
		m.offloader = InlineOffloader{}
	}
	return m, nil
}

// Account returns the account for snapshot reads.
func (m *Manager) Account() *account.Account {
	return m.account
}

// Submit schedules fn on the executor goroutine. It reports false once the
// executor has stopped.
func (m *Manager) Submit(fn func()) bool {
	if !m.executor.Post(fn) {
		log.Warn("Executor stopped, operation dropped")
		return false
	}
	return true
}

// Call runs fn on the executor goroutine and waits for it. It reports false
// without running fn once the executor has stopped.
func (m *Manager) Call(fn func()) bool {
	return Call(m.executor, fn)
}

// Start asks the server for whatever the restored account is missing.
func (m *Manager) Start() {
	if !m.account.IsLoggedIn() {
		return
	}
	switch {
	case !m.account.IsInSession():
		m.AcquireSession(m.account.Email(), m.account.Password())
	case !m.account.IsLanguageSet():
		m.FetchLanguages()
		m.FetchWords()
	default:
		m.FetchWords()
	}
}

// Logout forgets credentials, languages and words.
func (m *Manager) Logout() {
	m.account.ClearLogin()
	m.account.SetLanguages(entities.Languages{})
	m.account.SaveLanguages()
	m.account.ClearWords()
	m.memo.reset()
	m.acquiring = ""

	m.callbacks.DisplayMessage(m.msgs.LoggedOut)
	m.callbacks.NotifyDataChanged(true)
}

// requireSession reports whether a session token is held. Without one it
// starts a session acquisition for a logged-in account; the caller must then
// return without doing anything else. A logged-out account sends nothing.
func (m *Manager) requireSession(op string) bool {
	if m.account.IsInSession() {
		return true
	}
	if !m.account.IsLoggedIn() {
		m.gated(op, "not_logged_in")
		return false
	}
	m.gated(op, "no_session")
	m.AcquireSession(m.account.Email(), m.account.Password())
	return false
}

func (m *Manager) gated(op, reason string) {
	metrics.RecordGated(op, reason)
	log.WithFields(log.Fields{"operation": op, "reason": reason}).Debug("operation gated")
}

// sessionQuery returns the query carrying the current session token.
func (m *Manager) sessionQuery() url.Values {
	return url.Values{"session": {m.account.SessionToken()}}
}

// expireSession drops a token the server no longer accepts, so the next
// gated operation acquires a fresh one.
func (m *Manager) expireSession(err error) {
	if !errors.Is(err, transport.ErrUnauthorized) || !m.account.IsInSession() {
		return
	}
	log.Printf("Session token rejected, dropping it")
	if err := m.account.SetLogin(m.account.Email(), m.account.Password(), ""); err != nil {
		log.Printf("Failed to drop session token: %v", err)
		return
	}
	m.account.SaveLogin()
}

func isAccepted(body []byte) bool {
	return strings.TrimSpace(string(body)) == acceptanceToken
}

func isInputValid(s string) bool {
	return strings.TrimSpace(s) != ""
}
