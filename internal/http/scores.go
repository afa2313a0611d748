package http

import (
	"github.com/gin-gonic/gin"

	"github.com/mrlokans/zeeguu/internal/entities"
	"github.com/mrlokans/zeeguu/internal/session"
)

// ScoresController exposes the text scoring and content extraction calls.
type ScoresController struct {
	manager *session.Manager
}

func NewScoresController(manager *session.Manager) *ScoresController {
	return &ScoresController{manager: manager}
}

type textsRequest struct {
	Language string               `json:"language" binding:"required"`
	Texts    []entities.TextInput `json:"texts" binding:"required"`
}

// Difficulty scores texts for the learner. Results arrive as a difficulties event.
func (sc *ScoresController) Difficulty(c *gin.Context) {
	sc.scoreTexts(c, sc.manager.DifficultyForText)
}

// Learnability scores texts for the learner. Results arrive as a learnabilities event.
func (sc *ScoresController) Learnability(c *gin.Context) {
	sc.scoreTexts(c, sc.manager.LearnabilityForText)
}

func (sc *ScoresController) scoreTexts(c *gin.Context, score func(string, []entities.TextInput)) {
	var req textsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalidBody(c, err)
		return
	}
	sc.manager.Submit(func() { score(req.Language, req.Texts) })
	respondAccepted(c, "scoring submitted")
}

type urlsRequest struct {
	URLs []entities.URLInput `json:"urls" binding:"required"`
}

// Content extracts the main content of pages. Results arrive as a contents event.
func (sc *ScoresController) Content(c *gin.Context) {
	var req urlsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalidBody(c, err)
		return
	}
	sc.manager.Submit(func() { sc.manager.ContentFromURLs(req.URLs) })
	respondAccepted(c, "content extraction submitted")
}
