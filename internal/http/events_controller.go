package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// EventsResponse is a page of the event feed.
type EventsResponse struct {
	Events  []Event `json:"events"`
	LastSeq uint64  `json:"last_seq"`
}

// EventsController serves the notification feed.
type EventsController struct {
	events *EventRecorder
}

func NewEventsController(events *EventRecorder) *EventsController {
	return &EventsController{events: events}
}

// List returns the events newer than the "since" sequence number.
func (ec *EventsController) List(c *gin.Context) {
	since, ok := parseSince(c)
	if !ok {
		return
	}
	if ec.events == nil {
		c.JSON(http.StatusOK, EventsResponse{Events: []Event{}})
		return
	}
	c.JSON(http.StatusOK, EventsResponse{
		Events:  ec.events.Since(since),
		LastSeq: ec.events.LastSeq(),
	})
}
