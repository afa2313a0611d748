package session

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/mrlokans/zeeguu/internal/transport"
)

// Translate asks the server to translate input from one language to another.
// Repeating the last (input, target) pair replays the remembered result
// without a request. Translation failures are only logged.
func (m *Manager) Translate(input, from, to string) {
	switch {
	case !m.account.IsLoggedIn():
		m.gated("translate", "not_logged_in")
		m.callbacks.DisplayError(m.msgs.NoLogin, false)
		return
	case !m.network.Available():
		m.gated("translate", "offline")
		m.callbacks.DisplayError(m.msgs.NoInternet, false)
		return
	case !m.requireSession("translate"):
		return
	case !isInputValid(input):
		return
	case from == to:
		m.gated("translate", "same_language")
		m.callbacks.DisplayError(m.msgs.SameLanguage, false)
		return
	case m.memo.check(input, to):
		if m.memo.hasResult {
			m.callbacks.SetTranslation(m.memo.result)
		}
		return
	}

	req := transport.Request{
		Method: http.MethodPost,
		Path:   "translate/" + transport.PathSegment(from) + "/" + transport.PathSegment(to),
		Query:  m.sessionQuery(),
		Form: url.Values{
			"word":    {strings.TrimSpace(input)},
			"url":     {""},
			"context": {""},
		},
	}

	m.requester.Send(req, func(body []byte) {
		translation := string(body)
		m.callbacks.SetTranslation(translation)
		m.memo.store(input, to, translation)
	}, func(err error) {
		m.expireSession(err)
		log.Printf("Failed to translate %q: %v", input, err)
	})
}

// BookmarkWithContext saves a word with its translation and the page it was
// found on. The word is highlighted before the request completes; on success
// the word list is refreshed.
func (m *Manager) BookmarkWithContext(input, from, translation, to, title, pageURL, context string) {
	switch {
	case !m.account.IsLoggedIn():
		m.gated("bookmark", "not_logged_in")
		m.callbacks.ShowLoginDialog(m.msgs.LoginFirst, "")
		return
	case !m.network.Available():
		m.gated("bookmark", "offline")
		m.callbacks.DisplayMessage(m.msgs.NoInternet)
		return
	case !isInputValid(input) || !isInputValid(translation):
		m.gated("bookmark", "invalid_input")
		m.callbacks.DisplayMessage(m.msgs.InputInvalid)
		return
	case !m.requireSession("bookmark"):
		return
	}

	m.callbacks.Highlight(input)

	req := transport.Request{
		Method: http.MethodPost,
		Path: "bookmark_with_context/" + transport.PathSegment(from) +
			"/" + transport.PathSegment(strings.TrimSpace(input)) +
			"/" + transport.PathSegment(to) +
			"/" + transport.PathSegment(translation),
		Query: m.sessionQuery(),
		Form: url.Values{
			"title":   {title},
			"url":     {pageURL},
			"context": {context},
		},
	}

	m.requester.Send(req, func(body []byte) {
		m.callbacks.BookmarkWord(strings.TrimSpace(string(body)))
		m.callbacks.DisplayMessage(fmt.Sprintf(m.msgs.BookmarkSaved, input, translation))
		m.FetchWords()
	}, func(err error) {
		m.expireSession(err)
		log.Printf("Failed to bookmark %q: %v", input, err)
		m.callbacks.DisplayMessage(m.msgs.SaveFailed)
	})
}
