package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/zeeguu/internal/entities"
	"github.com/mrlokans/zeeguu/internal/session"
)

// WordsResponse is the saved word tree.
type WordsResponse struct {
	Count int                 `json:"count"`
	Days  []entities.DayGroup `json:"days"`
}

// WordsController exposes translation and the saved words.
type WordsController struct {
	manager *session.Manager
}

func NewWordsController(manager *session.Manager) *WordsController {
	return &WordsController{manager: manager}
}

// GetWords returns the current word tree.
func (wc *WordsController) GetWords(c *gin.Context) {
	acct := wc.manager.Account()
	days := acct.Words()
	if days == nil {
		days = []entities.DayGroup{}
	}
	c.JSON(http.StatusOK, WordsResponse{Count: acct.WordCount(), Days: days})
}

// GetWord returns a single saved word.
func (wc *WordsController) GetWord(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	word, found := wc.manager.Account().FindWord(id)
	if !found {
		respondNotFound(c, "word")
		return
	}
	c.JSON(http.StatusOK, word)
}

// RefreshWords reloads the word tree from the server.
func (wc *WordsController) RefreshWords(c *gin.Context) {
	wc.manager.Submit(func() { wc.manager.FetchWords() })
	respondAccepted(c, "refresh submitted")
}

type translateRequest struct {
	Word string `json:"word"`
	From string `json:"from" binding:"required"`
	To   string `json:"to" binding:"required"`
}

// Translate requests a translation. The result arrives as a translation event.
func (wc *WordsController) Translate(c *gin.Context) {
	var req translateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalidBody(c, err)
		return
	}
	wc.manager.Submit(func() {
		wc.manager.Translate(req.Word, req.From, req.To)
	})
	respondAccepted(c, "translation submitted")
}

type bookmarkRequest struct {
	Word        string `json:"word"`
	From        string `json:"from" binding:"required"`
	Translation string `json:"translation"`
	To          string `json:"to" binding:"required"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	Context     string `json:"context"`
}

// CreateBookmark saves a word with its translation and context.
func (wc *WordsController) CreateBookmark(c *gin.Context) {
	var req bookmarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalidBody(c, err)
		return
	}
	wc.manager.Submit(func() {
		wc.manager.BookmarkWithContext(req.Word, req.From, req.Translation, req.To, req.Title, req.URL, req.Context)
	})
	respondAccepted(c, "bookmark submitted")
}

// DeleteBookmark removes a saved word.
func (wc *WordsController) DeleteBookmark(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	wc.manager.Submit(func() { wc.manager.DeleteWord(id) })
	respondAccepted(c, "delete submitted")
}
