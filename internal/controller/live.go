package controller

import (
	"context"
	"io"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/saxenaaman628/org-voting-system/internal/services"
)

const keepAliveInterval = 25 * time.Second

// LiveFeed yields the vote notifications of one election until ctx ends.
type LiveFeed interface {
	Subscribe(ctx context.Context, electionID string) (<-chan services.VoteCastEvent, error)
}

type LiveController struct {
	elections *services.ElectionService
	feed      LiveFeed
}

func NewLiveController(elections *services.ElectionService, feed LiveFeed) *LiveController {
	return &LiveController{elections: elections, feed: feed}
}

// Stream relays an election's room to the client as server-sent events.
func (l *LiveController) Stream(c *gin.Context) {
	ctx := c.Request.Context()
	election, err := l.elections.GetElection(ctx, callerFrom(c).OrganizationID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	events, err := l.feed.Subscribe(ctx, election.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	keepAlive := time.NewTicker(keepAliveInterval)
	defer keepAlive.Stop()

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.SSEvent("ready", gin.H{"electionId": election.ID})
	c.Writer.Flush()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case event, ok := <-events:
			if !ok {
				return false
			}
			c.SSEvent(services.ActionVoteCast, event)
			return true
		case <-keepAlive.C:
			c.SSEvent("ping", gin.H{})
			return true
		}
	})
}
