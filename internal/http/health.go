package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/zeeguu/internal/account"
	"github.com/mrlokans/zeeguu/internal/netcheck"
)

// Pinger is a storage backend that can report its connectivity.
type Pinger interface {
	Ping() error
}

type HealthResponse struct {
	Status  string            `json:"status"`
	Time    string            `json:"time"`
	Version string            `json:"version,omitempty"`
	Checks  map[string]string `json:"checks"`
}

type HealthController struct {
	store   Pinger
	network netcheck.Monitor
	account *account.Account
	version string
}

func NewHealthController(store Pinger, network netcheck.Monitor, acct *account.Account, version string) *HealthController {
	return &HealthController{
		store:   store,
		network: network,
		account: acct,
		version: version,
	}
}

// Status reports storage as the only hard dependency. The network and session
// checks are informational since the service works offline from its cache.
func (h *HealthController) Status(c *gin.Context) {
	checks := make(map[string]string)
	status := "healthy"

	if h.store != nil {
		if err := h.store.Ping(); err != nil {
			checks["database"] = "error: " + err.Error()
			status = "unhealthy"
		} else {
			checks["database"] = "ok"
		}
	} else {
		checks["database"] = "not configured"
	}

	switch {
	case h.network == nil:
		checks["network"] = "not configured"
	case h.network.Available():
		checks["network"] = "ok"
	default:
		checks["network"] = "offline"
	}

	switch {
	case h.account == nil:
		checks["session"] = "not configured"
	case h.account.IsInSession():
		checks["session"] = "ok"
	case h.account.IsLoggedIn():
		checks["session"] = "no session"
	default:
		checks["session"] = "logged out"
	}

	health := HealthResponse{
		Status:  status,
		Time:    time.Now().Format(time.RFC3339),
		Version: h.version,
		Checks:  checks,
	}

	statusCode := http.StatusOK
	if status != "healthy" {
		statusCode = http.StatusServiceUnavailable
	}

	c.IndentedJSON(statusCode, health)
}
