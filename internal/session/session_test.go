package session

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/zeeguu/internal/entities"
	"github.com/mrlokans/zeeguu/internal/transport"
)

var errBoom = errors.New("connection reset")

func TestNew_RequiresCollaborators(t *testing.T) {
	_, err := New(Options{})
	assert.Error(t, err)
}

func TestTranslate_WithoutSessionAcquiresThenManualRetryReachesNetwork(t *testing.T) {
	f := newFixture(t, loggedInNoSession(), englishGerman())

	f.manager.Translate("hello", "en", "fr")

	assert.Equal(t, []string{"session/" + "anna@example.com"}, f.requester.paths())
	assert.Empty(t, f.callbacks.events)

	req := f.requester.succeed(t, "session/", testToken)
	assert.Equal(t, testPassword, req.Form.Get("password"))
	assert.True(t, f.account.IsInSession())
	assert.Equal(t, testToken, f.store.creds.SessionToken)
	assert.Equal(t, 1, f.requester.countPrefix("learned_and_native_language"))
	assert.Equal(t, 1, f.requester.countPrefix("bookmarks_by_day"))
	assert.Equal(t, 0, f.requester.countPrefix("translate/"))
	assert.Equal(t, []string{"message:Login successful", "login_succeeded"}, f.callbacks.events)

	f.manager.Translate("hello", "en", "fr")
	require.Equal(t, 1, f.requester.countPrefix("translate/"))
	req = f.requester.succeed(t, "translate/en/fr", "bonjour")
	assert.Equal(t, testToken, req.Query.Get("session"))
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Contains(t, f.callbacks.events, "translation:bonjour")
}

func TestTranslate_RepeatUsesMemo(t *testing.T) {
	f := newFixture(t, inSession(), englishGerman())

	f.manager.Translate(" Haus ", "de", "en")
	req := f.requester.succeed(t, "translate/de/en", "house")
	assert.Equal(t, "Haus", req.Form.Get("word"))
	assert.Equal(t, "", req.Form.Get("url"))
	assert.Equal(t, "", req.Form.Get("context"))

	f.manager.Translate(" Haus ", "de", "en")

	assert.Equal(t, 1, f.requester.countPrefix("translate/"))
	assert.Equal(t, []string{"translation:house", "translation:house"}, f.callbacks.events)
}

func TestTranslate_MemoKeyIsRecordedEvenWhenRequestFails(t *testing.T) {
	f := newFixture(t, inSession(), englishGerman())

	f.manager.Translate("Haus", "de", "en")
	f.requester.fail(t, "translate/", errBoom)

	f.manager.Translate("Haus", "de", "en")
	assert.Equal(t, 1, f.requester.countPrefix("translate/"))
	assert.Empty(t, f.callbacks.events)

	f.manager.Translate("Baum", "de", "en")
	assert.Equal(t, 2, f.requester.countPrefix("translate/"))
}

func TestTranslate_StaleResponseDoesNotFillNewKey(t *testing.T) {
	f := newFixture(t, inSession(), englishGerman())

	f.manager.Translate("Haus", "de", "en")
	f.manager.Translate("Baum", "de", "en")
	f.requester.succeed(t, "translate/", "house")

	f.manager.Translate("Baum", "de", "en")
	assert.Equal(t, []string{"translation:house"}, f.callbacks.events)
}

func TestTranslate_SameLanguageNeverReachesNetwork(t *testing.T) {
	f := newFixture(t, inSession(), englishGerman())

	f.manager.Translate("hello", "en", "en")
	f.manager.Translate("hello", "en", "en")

	assert.Empty(t, f.requester.sent)
	assert.Equal(t, []string{
		"error:Source and target language are the same|false",
		"error:Source and target language are the same|false",
	}, f.callbacks.events)
}

func TestTranslate_Gates(t *testing.T) {
	t.Run("not logged in", func(t *testing.T) {
		f := newFixture(t, entities.Credentials{}, englishGerman())
		f.manager.Translate("hello", "en", "fr")
		assert.Empty(t, f.requester.sent)
		assert.Equal(t, []string{"error:You are not logged in to Zeeguu|false"}, f.callbacks.events)
	})

	t.Run("offline", func(t *testing.T) {
		f := newFixture(t, inSession(), englishGerman())
		f.network.up = false
		f.manager.Translate("hello", "en", "fr")
		assert.Empty(t, f.requester.sent)
		assert.Equal(t, []string{"error:No internet connection|false"}, f.callbacks.events)
	})

	t.Run("blank input", func(t *testing.T) {
		f := newFixture(t, inSession(), englishGerman())
		f.manager.Translate("   ", "en", "fr")
		assert.Empty(t, f.requester.sent)
		assert.Empty(t, f.callbacks.events)
	})
}

func TestBookmarkWithContext_Success(t *testing.T) {
	f := newFixture(t, inSession(), englishGerman())

	f.manager.BookmarkWithContext(" guten Tag ", "de", "good day", "en", "Der Spiegel", "https://spiegel.de", "Ich sage guten Tag")

	assert.Equal(t, []string{"highlight: guten Tag "}, f.callbacks.events)
	req := f.requester.succeed(t, "bookmark_with_context/", "42")
	assert.Equal(t, "bookmark_with_context/de/guten%20Tag/en/good%20day", req.Path)
	assert.Equal(t, "Der Spiegel", req.Form.Get("title"))
	assert.Equal(t, "https://spiegel.de", req.Form.Get("url"))
	assert.Equal(t, "Ich sage guten Tag", req.Form.Get("context"))

	assert.Equal(t, []string{
		"highlight: guten Tag ",
		"bookmark:42",
		"message:<b> guten Tag  = good day</b> saved",
	}, f.callbacks.events)
	assert.Equal(t, 1, f.requester.countPrefix("bookmarks_by_day"))
}

func TestBookmarkWithContext_Failure(t *testing.T) {
	f := newFixture(t, inSession(), englishGerman())

	f.manager.BookmarkWithContext("Haus", "de", "house", "en", "", "", "")
	f.requester.fail(t, "bookmark_with_context/", errBoom)

	assert.Equal(t, []string{"highlight:Haus", "message:The word could not be saved"}, f.callbacks.events)
	assert.Equal(t, 0, f.requester.countPrefix("bookmarks_by_day"))
}

func TestBookmarkWithContext_Gates(t *testing.T) {
	t.Run("not logged in shows login dialog", func(t *testing.T) {
		f := newFixture(t, entities.Credentials{}, englishGerman())
		f.manager.BookmarkWithContext("Haus", "de", "house", "en", "", "", "")
		assert.Empty(t, f.requester.sent)
		assert.Equal(t, []string{"login_dialog:Please log in first|"}, f.callbacks.events)
	})

	t.Run("offline", func(t *testing.T) {
		f := newFixture(t, inSession(), englishGerman())
		f.network.up = false
		f.manager.BookmarkWithContext("Haus", "de", "house", "en", "", "", "")
		assert.Empty(t, f.requester.sent)
		assert.Equal(t, []string{"message:No internet connection"}, f.callbacks.events)
	})

	t.Run("invalid input is checked before the session", func(t *testing.T) {
		f := newFixture(t, loggedInNoSession(), englishGerman())
		f.manager.BookmarkWithContext("Haus", "de", " ", "en", "", "", "")
		assert.Empty(t, f.requester.sent)
		assert.Equal(t, []string{"message:Input is not valid"}, f.callbacks.events)
	})
}

func TestGatedOperationsWithoutSession_AcquireExactlyOnce(t *testing.T) {
	ops := map[string]func(m *Manager){
		"translate":    func(m *Manager) { m.Translate("hello", "en", "fr") },
		"bookmark":     func(m *Manager) { m.BookmarkWithContext("Haus", "de", "house", "en", "", "", "") },
		"languages":    func(m *Manager) { m.FetchLanguages() },
		"native":       func(m *Manager) { m.SetNativeLanguage("fr") },
		"learning":     func(m *Manager) { m.SetLearningLanguage("fr") },
		"delete":       func(m *Manager) { m.DeleteWord(5) },
		"difficulty":   func(m *Manager) { m.DifficultyForText("de", []entities.TextInput{{ID: "1", Content: "Hallo"}}) },
		"learnability": func(m *Manager) { m.LearnabilityForText("de", []entities.TextInput{{ID: "1", Content: "Hallo"}}) },
	}

	for name, op := range ops {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t, loggedInNoSession(), englishGerman())
			op(f.manager)

			assert.Equal(t, []string{"session/anna@example.com"}, f.requester.paths())
			assert.Empty(t, f.callbacks.events)
			assert.Empty(t, f.store.langSaves)
			assert.Equal(t, englishGerman(), f.account.Languages())
		})
	}
}

func TestGatedOperations_LoggedOut_SendNothing(t *testing.T) {
	ops := map[string]func(m *Manager){
		"delete":       func(m *Manager) { m.DeleteWord(5) },
		"difficulty":   func(m *Manager) { m.DifficultyForText("de", []entities.TextInput{{ID: "1", Content: "Hallo"}}) },
		"learnability": func(m *Manager) { m.LearnabilityForText("de", []entities.TextInput{{ID: "1", Content: "Hallo"}}) },
	}

	for name, op := range ops {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t, entities.Credentials{}, entities.Languages{})
			op(f.manager)
			op(f.manager)

			assert.Empty(t, f.requester.paths())
			assert.Empty(t, f.callbacks.events)
			assert.False(t, f.account.IsLoggedIn())
		})
	}
}

func TestAcquireSession_BurstSendsOneRequest(t *testing.T) {
	f := newFixture(t, loggedInNoSession(), englishGerman())

	f.manager.Translate("hello", "en", "fr")
	f.manager.FetchLanguages()
	f.manager.DeleteWord(3)
	assert.Equal(t, 1, f.requester.countPrefix("session/"))

	f.requester.fail(t, "session/", errBoom)
	f.manager.AcquireSession(testEmail, testPassword)
	assert.Equal(t, 2, f.requester.countPrefix("session/"))
}

func TestAcquireSession_DifferentEmailIsNotDeduplicated(t *testing.T) {
	f := newFixture(t, loggedInNoSession(), englishGerman())

	f.manager.AcquireSession(testEmail, testPassword)
	f.manager.AcquireSession("other@example.com", "pw")
	assert.Equal(t, 2, f.requester.countPrefix("session/"))
}

func TestAcquireSession_Failure(t *testing.T) {
	f := newFixture(t, loggedInNoSession(), englishGerman())

	f.manager.AcquireSession(testEmail, "wrong")
	f.requester.fail(t, "session/", transport.ErrUnauthorized)

	assert.False(t, f.account.IsLoggedIn())
	assert.Equal(t, 1, f.store.cleared)
	assert.Equal(t, []string{"login_dialog:Wrong email or password|anna@example.com"}, f.callbacks.events)
	assert.Len(t, f.requester.sent, 1)
}

func TestAcquireSession_EmptyTokenIsFailure(t *testing.T) {
	f := newFixture(t, loggedInNoSession(), englishGerman())

	f.manager.AcquireSession(testEmail, testPassword)
	f.requester.succeed(t, "session/", "  ")

	assert.False(t, f.account.IsInSession())
	assert.Equal(t, []string{"login_dialog:Wrong email or password|anna@example.com"}, f.callbacks.events)
}

func TestAcquireSession_OfflineIsSilent(t *testing.T) {
	f := newFixture(t, loggedInNoSession(), englishGerman())
	f.network.up = false

	f.manager.AcquireSession(testEmail, testPassword)

	assert.Empty(t, f.requester.sent)
	assert.Empty(t, f.callbacks.events)
	assert.True(t, f.account.IsLoggedIn())
}

func TestCreateAccount(t *testing.T) {
	t.Run("success signs in and fetches", func(t *testing.T) {
		f := newFixture(t, entities.Credentials{}, entities.Languages{})
		f.manager.CreateAccount("anna", testEmail, testPassword)

		req := f.requester.succeed(t, "add_user/", "fresh-token")
		assert.Equal(t, "add_user/anna@example.com", req.Path)
		assert.Equal(t, "anna", req.Form.Get("username"))
		assert.Equal(t, testPassword, req.Form.Get("password"))

		assert.Equal(t, "fresh-token", f.account.SessionToken())
		assert.Equal(t, testEmail, f.store.creds.Email)
		assert.Equal(t, []string{"message:Login successful", "login_succeeded"}, f.callbacks.events)
		assert.Equal(t, 1, f.requester.countPrefix("learned_and_native_language"))
		assert.Equal(t, 1, f.requester.countPrefix("bookmarks_by_day"))
	})

	t.Run("failure reopens the dialog", func(t *testing.T) {
		f := newFixture(t, entities.Credentials{}, entities.Languages{})
		f.manager.CreateAccount("anna", testEmail, testPassword)
		f.requester.fail(t, "add_user/", &transport.StatusError{StatusCode: 400, Body: "exists"})

		assert.False(t, f.account.IsLoggedIn())
		assert.Equal(t, []string{"create_dialog:An account with this email already exists|anna|anna@example.com"}, f.callbacks.events)
	})
}

func TestFetchLanguages(t *testing.T) {
	t.Run("success overwrites and persists", func(t *testing.T) {
		f := newFixture(t, inSession(), englishGerman())
		f.manager.FetchLanguages()
		f.requester.succeed(t, "learned_and_native_language", `{"native": "fr", "learned": "es"}`)

		want := entities.Languages{Native: "fr", Learning: "es"}
		assert.Equal(t, want, f.account.Languages())
		assert.Equal(t, []entities.Languages{want}, f.store.langSaves)
	})

	t.Run("malformed body still persists current", func(t *testing.T) {
		f := newFixture(t, inSession(), englishGerman())
		f.manager.FetchLanguages()
		f.requester.succeed(t, "learned_and_native_language", `{"native": 3}`)

		assert.Equal(t, englishGerman(), f.account.Languages())
		assert.Equal(t, []entities.Languages{englishGerman()}, f.store.langSaves)
	})

	t.Run("transport failure still persists current", func(t *testing.T) {
		f := newFixture(t, inSession(), englishGerman())
		f.manager.FetchLanguages()
		f.requester.fail(t, "learned_and_native_language", errBoom)

		assert.Equal(t, []entities.Languages{englishGerman()}, f.store.langSaves)
		assert.Empty(t, f.callbacks.events)
	})

	t.Run("offline does nothing", func(t *testing.T) {
		f := newFixture(t, inSession(), englishGerman())
		f.network.up = false
		f.manager.FetchLanguages()
		assert.Empty(t, f.requester.sent)
		assert.Empty(t, f.store.langSaves)
	})
}

func TestSetLanguage_UnchangedIsNoop(t *testing.T) {
	f := newFixture(t, inSession(), englishGerman())

	f.manager.SetNativeLanguage("en")
	f.manager.SetLearningLanguage("de")

	assert.Empty(t, f.requester.sent)
	assert.Empty(t, f.store.langSaves)
}

func TestSetLanguage_Accepted(t *testing.T) {
	f := newFixture(t, inSession(), englishGerman())

	f.manager.Translate("Haus", "de", "en")
	f.requester.succeed(t, "translate/", "house")

	f.manager.SetLearningLanguage("fr")
	req := f.requester.succeed(t, "learned_language/fr", "OK")
	assert.Equal(t, testToken, req.Query.Get("session"))

	want := entities.Languages{Native: "en", Learning: "fr"}
	assert.Equal(t, want, f.account.Languages())
	assert.Equal(t, []entities.Languages{want}, f.store.langSaves)

	// The remembered translation is gone, so the same pair is requested again.
	f.manager.Translate("Haus", "de", "en")
	assert.Equal(t, 2, f.requester.countPrefix("translate/"))
}

func TestSetLanguage_Rejected(t *testing.T) {
	f := newFixture(t, inSession(), englishGerman())

	f.manager.SetNativeLanguage("de")
	f.requester.succeed(t, "native_language/de", "same as learned")

	assert.Equal(t, englishGerman(), f.account.Languages())
	assert.Equal(t, []entities.Languages{englishGerman()}, f.store.langSaves)
	assert.Equal(t, []string{"message:This language combination is not supported"}, f.callbacks.events)
}

func TestSetLanguage_TransportFailure(t *testing.T) {
	f := newFixture(t, inSession(), englishGerman())

	f.manager.SetNativeLanguage("fr")
	f.requester.fail(t, "native_language/", errBoom)

	assert.Equal(t, englishGerman(), f.account.Languages())
	assert.Equal(t, []entities.Languages{englishGerman()}, f.store.langSaves)
	assert.Equal(t, []string{"message:The language server could not be reached"}, f.callbacks.events)
}

func TestFetchWords_Success(t *testing.T) {
	f := newFixture(t, inSession(), englishGerman())

	assert.True(t, f.manager.FetchWords())
	f.requester.succeed(t, "bookmarks_by_day/with_context", wordsPayload)

	tree := f.account.Words()
	require.Len(t, tree, 1)
	assert.Equal(t, "2024-01-01", tree[0].Date)
	kids := tree[0].Children
	require.Len(t, kids, 5)
	assert.Equal(t, "A", kids[0].Page.Title)
	assert.Equal(t, int64(1), kids[1].Word.ID)
	assert.Equal(t, int64(2), kids[2].Word.ID)
	assert.Equal(t, "B", kids[3].Page.Title)
	assert.Equal(t, "dog", kids[4].Word.TranslatedWord)

	assert.Equal(t, []string{"data_changed:true"}, f.callbacks.events)
	assert.Len(t, f.cache.trees[testEmail], 1)
}

func TestFetchWords_MalformedKeepsTree(t *testing.T) {
	f := newFixture(t, inSession(), englishGerman())
	f.manager.FetchWords()
	f.requester.succeed(t, "bookmarks_by_day", wordsPayload)
	before := f.account.Words()

	f.manager.FetchWords()
	f.requester.succeed(t, "bookmarks_by_day", `[{"date": "2024-01-02", "bookmarks": [{"id": "x"}]}]`)

	assert.Equal(t, before, f.account.Words())
	assert.Equal(t, []string{"data_changed:true", "data_changed:false"}, f.callbacks.events)
}

func TestFetchWords_TransportFailureKeepsTree(t *testing.T) {
	f := newFixture(t, inSession(), englishGerman())
	f.manager.FetchWords()
	f.requester.fail(t, "bookmarks_by_day", errBoom)

	assert.Nil(t, f.account.Words())
	assert.Equal(t, []string{"data_changed:false"}, f.callbacks.events)
}

func TestFetchWords_WithoutSession(t *testing.T) {
	f := newFixture(t, loggedInNoSession(), englishGerman())

	assert.False(t, f.manager.FetchWords())
	assert.Empty(t, f.requester.sent)
	assert.Empty(t, f.callbacks.events)
}

func TestFetchWords_OfflineLoadsCache(t *testing.T) {
	f := newFixture(t, inSession(), englishGerman())
	f.network.up = false

	assert.False(t, f.manager.FetchWords())
	assert.Empty(t, f.callbacks.events)

	f.cache.trees[testEmail] = []entities.DayGroup{{Date: "2023-12-31"}}
	assert.False(t, f.manager.FetchWords())
	assert.Empty(t, f.requester.sent)
	assert.Equal(t, []string{"data_changed:true"}, f.callbacks.events)
	assert.Equal(t, "2023-12-31", f.account.Words()[0].Date)
}

func TestDeleteWord_Accepted(t *testing.T) {
	f := newFixture(t, inSession(), englishGerman())
	f.manager.FetchWords()
	f.requester.succeed(t, "bookmarks_by_day", wordsPayload)
	f.callbacks.events = nil

	f.manager.DeleteWord(3)
	req := f.requester.succeed(t, "delete_bookmark/3", "OK")
	assert.Equal(t, testToken, req.Query.Get("session"))

	_, found := f.account.FindWord(3)
	assert.False(t, found)
	assert.Equal(t, 2, f.requester.countPrefix("bookmarks_by_day"))
	assert.Equal(t, []string{"bookmark:0", "message:Word deleted"}, f.callbacks.events)

	f.requester.succeed(t, "bookmarks_by_day", wordsPayload)
	assert.Equal(t, []string{"bookmark:0", "message:Word deleted", "data_changed:true"}, f.callbacks.events)
}

func TestDeleteWord_Failures(t *testing.T) {
	t.Run("rejected", func(t *testing.T) {
		f := newFixture(t, inSession(), englishGerman())
		f.manager.DeleteWord(5)
		f.requester.succeed(t, "delete_bookmark/5", "not found")
		assert.Equal(t, []string{"error:The word could not be deleted|true"}, f.callbacks.events)
		assert.Equal(t, 0, f.requester.countPrefix("bookmarks_by_day"))
	})

	t.Run("transport", func(t *testing.T) {
		f := newFixture(t, inSession(), englishGerman())
		f.manager.DeleteWord(5)
		f.requester.fail(t, "delete_bookmark/5", errBoom)
		assert.Equal(t, []string{"error:The word could not be deleted|false"}, f.callbacks.events)
	})

	t.Run("offline", func(t *testing.T) {
		f := newFixture(t, inSession(), englishGerman())
		f.network.up = false
		f.manager.DeleteWord(5)
		assert.Empty(t, f.requester.sent)
	})
}

func TestUnauthorizedResponseDropsToken(t *testing.T) {
	f := newFixture(t, inSession(), englishGerman())

	f.manager.FetchWords()
	f.requester.fail(t, "bookmarks_by_day", fmt.Errorf("wrapped: %w", transport.ErrUnauthorized))

	assert.True(t, f.account.IsLoggedIn())
	assert.False(t, f.account.IsInSession())
	assert.Empty(t, f.store.creds.SessionToken)

	f.manager.Translate("Haus", "de", "en")
	assert.Equal(t, 1, f.requester.countPrefix("session/"))
}

func TestStart(t *testing.T) {
	t.Run("logged out does nothing", func(t *testing.T) {
		f := newFixture(t, entities.Credentials{}, entities.Languages{})
		f.manager.Start()
		assert.Empty(t, f.requester.sent)
	})

	t.Run("no session acquires", func(t *testing.T) {
		f := newFixture(t, loggedInNoSession(), englishGerman())
		f.manager.Start()
		assert.Equal(t, []string{"session/anna@example.com"}, f.requester.paths())
	})

	t.Run("no languages fetches both", func(t *testing.T) {
		f := newFixture(t, inSession(), entities.Languages{Native: "en"})
		f.manager.Start()
		assert.Equal(t, []string{"learned_and_native_language", "bookmarks_by_day/with_context"}, f.requester.paths())
	})

	t.Run("complete account fetches words", func(t *testing.T) {
		f := newFixture(t, inSession(), englishGerman())
		f.manager.Start()
		assert.Equal(t, []string{"bookmarks_by_day/with_context"}, f.requester.paths())
	})
}

func TestLogout(t *testing.T) {
	f := newFixture(t, inSession(), englishGerman())
	f.manager.FetchWords()
	f.requester.succeed(t, "bookmarks_by_day", wordsPayload)
	f.callbacks.events = nil

	f.manager.Logout()

	assert.False(t, f.account.IsLoggedIn())
	assert.False(t, f.account.IsLanguageSet())
	assert.Nil(t, f.account.Words())
	assert.Equal(t, entities.Languages{}, f.store.langs)
	assert.Equal(t, []string{"message:Logged out", "data_changed:true"}, f.callbacks.events)
}

func TestMessagesDefaultsFillGaps(t *testing.T) {
	msgs := Messages{NoInternet: "Offline"}.withDefaults()
	assert.Equal(t, "Offline", msgs.NoInternet)
	assert.Equal(t, DefaultMessages().LoginSuccessful, msgs.LoginSuccessful)
}
