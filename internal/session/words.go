package session

import (
	"net/http"
	"strconv"

	log "github.com/sirupsen/logrus"

	"github.com/mrlokans/zeeguu/internal/transport"
	"github.com/mrlokans/zeeguu/internal/wordtree"
)

// FetchWords refreshes the word tree from the server and reports whether a
// request was sent. Without a session nothing happens. Offline, the cached
// tree is loaded instead. A failed or malformed fetch keeps the current tree.
func (m *Manager) FetchWords() bool {
	if !m.account.IsInSession() {
		return false
	}
	if !m.network.Available() {
		m.gated("fetch_words", "offline")
		if m.account.LoadWordsFromCache() {
			m.callbacks.NotifyDataChanged(true)
		}
		return false
	}

	req := transport.Request{
		Method: http.MethodGet,
		Path:   "bookmarks_by_day/with_context",
		Query:  m.sessionQuery(),
	}

	m.requester.Send(req, func(body []byte) {
		tree, err := wordtree.Build(body)
		if err != nil {
			log.Printf("Failed to build word tree: %v", err)
			m.callbacks.NotifyDataChanged(false)
			return
		}
		m.account.ReplaceWords(tree)
		m.callbacks.NotifyDataChanged(true)
	}, func(err error) {
		m.expireSession(err)
		log.Printf("Failed to fetch words: %v", err)
		m.callbacks.NotifyDataChanged(false)
	})
	return true
}

// DeleteWord deletes a saved word on the server. Once the server accepts, the
// entry is removed locally, the deletion is reported and the tree is refetched.
func (m *Manager) DeleteWord(id int64) {
	if !m.requireSession("delete_word") {
		return
	}
	if !m.network.Available() {
		m.gated("delete_word", "offline")
		return
	}

	req := transport.Request{
		Method: http.MethodPost,
		Path:   "delete_bookmark/" + strconv.FormatInt(id, 10),
		Query:  m.sessionQuery(),
	}

	m.requester.Send(req, func(body []byte) {
		if !isAccepted(body) {
			log.Printf("Server refused to delete bookmark %d: %s", id, body)
			m.callbacks.DisplayError(m.msgs.DeleteFailed, true)
			return
		}
		m.account.RemoveWord(id)
		m.callbacks.BookmarkWord("0")
		m.callbacks.DisplayMessage(m.msgs.BookmarkDeleted)
		m.FetchWords()
	}, func(err error) {
		m.expireSession(err)
		log.Printf("Failed to delete bookmark %d: %v", id, err)
		m.callbacks.DisplayError(m.msgs.DeleteFailed, false)
	})
}
