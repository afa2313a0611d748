package session

import (
	"net/http"
	"net/url"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/mrlokans/zeeguu/internal/metrics"
	"github.com/mrlokans/zeeguu/internal/transport"
)

// CreateAccount registers a new user. On success the user is signed in and
// languages and words are fetched. On failure the create account dialog is
// shown again with the attempted username and email.
func (m *Manager) CreateAccount(username, email, password string) {
	req := transport.Request{
		Method: http.MethodPost,
		Path:   "add_user/" + transport.PathSegment(email),
		Form:   url.Values{"username": {username}, "password": {password}},
	}

	m.requester.Send(req, func(body []byte) {
		if !m.signIn(email, password, body) {
			m.callbacks.ShowCreateAccountDialog(m.msgs.AccountExists, username, email)
		}
	}, func(err error) {
		log.Printf("Failed to create account for %s: %v", email, err)
		m.callbacks.ShowCreateAccountDialog(m.msgs.AccountExists, username, email)
	})
}

// AcquireSession exchanges email and password for a session token. It does
// nothing while offline or while a request for the same email is in flight.
// On failure the stored credentials are cleared and the login dialog is shown.
func (m *Manager) AcquireSession(email, password string) {
	if !m.network.Available() {
		m.gated("acquire_session", "offline")
		return
	}
	if m.acquiring != "" && m.acquiring == email {
		log.WithField("email", email).Debug("session request already in flight")
		return
	}
	m.acquiring = email

	req := transport.Request{
		Method: http.MethodPost,
		Path:   "session/" + transport.PathSegment(email),
		Form:   url.Values{"password": {password}},
	}

	m.requester.Send(req, func(body []byte) {
		m.finishAcquire(email)
		if !m.signIn(email, password, body) {
			m.failAcquire(email)
			return
		}
		metrics.RecordSessionAcquisition(true)
	}, func(err error) {
		m.finishAcquire(email)
		log.Printf("Failed to acquire session for %s: %v", email, err)
		m.failAcquire(email)
	})
}

func (m *Manager) finishAcquire(email string) {
	if m.acquiring == email {
		m.acquiring = ""
	}
}

func (m *Manager) failAcquire(email string) {
	metrics.RecordSessionAcquisition(false)
	m.account.ClearLogin()
	m.callbacks.ShowLoginDialog(m.msgs.WrongCredentials, email)
}

// signIn stores the login triple returned by add_user or session, then
// refreshes languages and words. It reports false for an unusable response.
func (m *Manager) signIn(email, password string, body []byte) bool {
	token := strings.TrimSpace(string(body))
	if token == "" {
		log.Printf("Server returned an empty session token for %s", email)
		return false
	}
	if err := m.account.SetLogin(email, password, token); err != nil {
		log.Printf("Failed to store login for %s: %v", email, err)
		return false
	}
	m.account.SaveLogin()

	m.callbacks.DisplayMessage(m.msgs.LoginSuccessful)
	m.callbacks.LoginSucceeded()

	m.FetchLanguages()
	m.FetchWords()
	return true
}
