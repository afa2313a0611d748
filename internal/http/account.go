package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/zeeguu/internal/entities"
	"github.com/mrlokans/zeeguu/internal/session"
)

// AccountResponse is a snapshot of the local account state.
type AccountResponse struct {
	Email     string             `json:"email,omitempty"`
	LoggedIn  bool               `json:"logged_in"`
	InSession bool               `json:"in_session"`
	Languages entities.Languages `json:"languages"`
	WordCount int                `json:"word_count"`
}

// AccountController exposes login, signup and language selection.
type AccountController struct {
	manager *session.Manager
}

func NewAccountController(manager *session.Manager) *AccountController {
	return &AccountController{manager: manager}
}

// GetAccount returns the current account snapshot.
func (ac *AccountController) GetAccount(c *gin.Context) {
	acct := ac.manager.Account()
	c.JSON(http.StatusOK, AccountResponse{
		Email:     acct.Email(),
		LoggedIn:  acct.IsLoggedIn(),
		InSession: acct.IsInSession(),
		Languages: acct.Languages(),
		WordCount: acct.WordCount(),
	})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login starts a session acquisition for the given credentials.
func (ac *AccountController) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalidBody(c, err)
		return
	}
	ac.manager.Submit(func() {
		ac.manager.AcquireSession(req.Email, req.Password)
	})
	respondAccepted(c, "login submitted")
}

type signupRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Signup creates an account on the server and signs in to it.
func (ac *AccountController) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalidBody(c, err)
		return
	}
	ac.manager.Submit(func() {
		ac.manager.CreateAccount(req.Username, req.Email, req.Password)
	})
	respondAccepted(c, "signup submitted")
}

// Logout forgets the stored login, languages and words.
func (ac *AccountController) Logout(c *gin.Context) {
	ac.manager.Submit(ac.manager.Logout)
	respondAccepted(c, "logout submitted")
}

type languageRequest struct {
	Language string `json:"language" binding:"required"`
}

// SetNativeLanguage asks the server to change the native language.
func (ac *AccountController) SetNativeLanguage(c *gin.Context) {
	ac.setLanguage(c, ac.manager.SetNativeLanguage)
}

// SetLearningLanguage asks the server to change the learning language.
func (ac *AccountController) SetLearningLanguage(c *gin.Context) {
	ac.setLanguage(c, ac.manager.SetLearningLanguage)
}

func (ac *AccountController) setLanguage(c *gin.Context, set func(string)) {
	var req languageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalidBody(c, err)
		return
	}
	ac.manager.Submit(func() { set(req.Language) })
	respondAccepted(c, "language change submitted")
}
