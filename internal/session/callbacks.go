package session

import "github.com/mrlokans/zeeguu/internal/entities"

// Callbacks is everything the manager tells its caller. All methods are
// invoked on the executor goroutine.
type Callbacks interface {
	ShowLoginDialog(title, email string)
	ShowCreateAccountDialog(message, username, email string)
	LoginSucceeded()

	SetTranslation(translation string)
	Highlight(word string)

	// DisplayError shows an error; transient errors may be shown briefly.
	DisplayError(message string, transient bool)
	DisplayMessage(message string)

	// NotifyDataChanged reports the end of a word refresh. changed is false
	// when the tree was left as it was.
	NotifyDataChanged(changed bool)

	// BookmarkWord reports the id of a saved bookmark, or "0" after a delete.
	BookmarkWord(id string)

	SetDifficulties(difficulties []entities.Difficulty)
	SetLearnabilities(learnabilities []entities.Learnability)
	SetContents(contents []entities.Content)
}

// Messages are the user facing strings passed to Callbacks.
type Messages struct {
	LoginSuccessful     string
	LoggedOut           string
	NoLogin             string
	LoginFirst          string
	WrongCredentials    string
	AccountExists       string
	NoInternet          string
	SameLanguage        string
	InputInvalid        string
	LanguageServer      string
	LanguageCombination string
	SaveFailed          string
	BookmarkDeleted     string
	DeleteFailed        string

	// BookmarkSaved is a format string taking the word and its translation.
	BookmarkSaved string
}

// DefaultMessages returns the English messages.
func DefaultMessages() Messages {
	return Messages{
		LoginSuccessful:     "Login successful",
		LoggedOut:           "Logged out",
		NoLogin:             "You are not logged in to Zeeguu",
		LoginFirst:          "Please log in first",
		WrongCredentials:    "Wrong email or password",
		AccountExists:       "An account with this email already exists",
		NoInternet:          "No internet connection",
		SameLanguage:        "Source and target language are the same",
		InputInvalid:        "Input is not valid",
		LanguageServer:      "The language server could not be reached",
		LanguageCombination: "This language combination is not supported",
		SaveFailed:          "The word could not be saved",
		BookmarkDeleted:     "Word deleted",
		DeleteFailed:        "The word could not be deleted",
		BookmarkSaved:       "<b>%s = %s</b> saved",
	}
}

func (m Messages) withDefaults() Messages {
	d := DefaultMessages()
	fill := func(v *string, def string) {
		if *v == "" {
			*v = def
		}
	}
	fill(&m.LoginSuccessful, d.LoginSuccessful)
	fill(&m.LoggedOut, d.LoggedOut)
	fill(&m.NoLogin, d.NoLogin)
	fill(&m.LoginFirst, d.LoginFirst)
	fill(&m.WrongCredentials, d.WrongCredentials)
	fill(&m.AccountExists, d.AccountExists)
	fill(&m.NoInternet, d.NoInternet)
	fill(&m.SameLanguage, d.SameLanguage)
	fill(&m.InputInvalid, d.InputInvalid)
	fill(&m.LanguageServer, d.LanguageServer)
	fill(&m.LanguageCombination, d.LanguageCombination)
	fill(&m.SaveFailed, d.SaveFailed)
	fill(&m.BookmarkDeleted, d.BookmarkDeleted)
	fill(&m.DeleteFailed, d.DeleteFailed)
	fill(&m.BookmarkSaved, d.BookmarkSaved)
	return m
}
