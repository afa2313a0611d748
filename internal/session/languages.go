package session

import (
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"

	"github.com/mrlokans/zeeguu/internal/entities"
	"github.com/mrlokans/zeeguu/internal/transport"
)

var errMalformedLanguages = errors.New("malformed languages response")

// FetchLanguages loads the user's native and learning language from the
// server. The current pair is persisted whatever the outcome.
func (m *Manager) FetchLanguages() {
	if !m.account.IsLoggedIn() || !m.network.Available() {
		m.gated("fetch_languages", "unavailable")
		return
	}
	if !m.requireSession("fetch_languages") {
		return
	}

	req := transport.Request{
		Method: http.MethodGet,
		Path:   "learned_and_native_language",
		Query:  m.sessionQuery(),
	}

	m.requester.Send(req, func(body []byte) {
		langs, err := parseLanguages(body)
		if err != nil {
			log.Printf("Failed to read languages: %v", err)
		} else {
			m.account.SetLanguages(langs)
		}
		m.account.SaveLanguages()
	}, func(err error) {
		m.expireSession(err)
		log.Printf("Failed to fetch languages: %v", err)
		m.account.SaveLanguages()
	})
}

func parseLanguages(body []byte) (entities.Languages, error) {
	if !gjson.ValidBytes(body) {
		return entities.Languages{}, errMalformedLanguages
	}
	native := gjson.GetBytes(body, "native")
	learned := gjson.GetBytes(body, "learned")
	if native.Type != gjson.String || learned.Type != gjson.String {
		return entities.Languages{}, errMalformedLanguages
	}
	return entities.Languages{Native: native.String(), Learning: learned.String()}, nil
}

// SetNativeLanguage changes the native language on the server.
func (m *Manager) SetNativeLanguage(lang string) {
	if lang == m.account.NativeLanguage() {
		return
	}
	m.setLanguage("native_language", lang, m.account.SetNativeLanguage)
}

// SetLearningLanguage changes the learning language on the server.
func (m *Manager) SetLearningLanguage(lang string) {
	if lang == m.account.LearningLanguage() {
		return
	}
	m.setLanguage("learned_language", lang, m.account.SetLearningLanguage)
}

// setLanguage posts the new language. An accepted change is committed and
// invalidates the remembered translation. Both outcomes end by persisting
// the language pair as it then stands.
func (m *Manager) setLanguage(endpoint, lang string, commit func(string)) {
	if !m.account.IsLoggedIn() || !m.network.Available() {
		m.gated(endpoint, "unavailable")
		return
	}
	if !m.requireSession(endpoint) {
		return
	}

	req := transport.Request{
		Method: http.MethodPost,
		Path:   endpoint + "/" + transport.PathSegment(lang),
		Query:  m.sessionQuery(),
	}

	m.requester.Send(req, func(body []byte) {
		if isAccepted(body) {
			commit(lang)
			m.memo.reset()
		} else {
			log.Printf("Server rejected %s %s: %s", endpoint, lang, body)
			m.callbacks.DisplayMessage(m.msgs.LanguageCombination)
		}
		m.account.SaveLanguages()
	}, func(err error) {
		m.expireSession(err)
		log.Printf("Failed to set %s to %s: %v", endpoint, lang, err)
		m.account.SaveLanguages()
		m.callbacks.DisplayMessage(m.msgs.LanguageServer)
	})
}
