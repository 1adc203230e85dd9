package api

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/saxenaaman628/org-voting-system/internal/controller"
	"github.com/saxenaaman628/org-voting-system/internal/middleware"
	"github.com/saxenaaman628/org-voting-system/internal/services"
)

// Deps are the collaborators behind the HTTP surface.
type Deps struct {
	JWTSecret   []byte
	CORSOrigins []string
	Voting      *services.VotingService
	Elections   *services.ElectionService
	Registry    *services.RegistryService
	Tally       *services.TallyService
	Live        controller.LiveFeed
}

func RegisterRoutes(r *gin.Engine, deps Deps) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     deps.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	votes := controller.NewVoteController(deps.Voting, deps.Elections, deps.Tally)
	live := controller.NewLiveController(deps.Elections, deps.Live)
	elections := controller.NewElectionController(deps.Elections)
	voters := controller.NewVoterController(deps.Registry)

	auth := r.Group("/api")
	auth.Use(middleware.JWTAuthMiddleware(deps.JWTSecret))
	{
		auth.GET("/elections/available", votes.Available)
		auth.GET("/elections/:id", votes.Get)
		auth.POST("/elections/:id/validate", votes.Validate)
		auth.POST("/elections/:id/vote", votes.Cast)
		auth.GET("/elections/:id/voted", votes.HasVoted)
		auth.GET("/elections/:id/results", votes.Results)
		auth.GET("/elections/:id/live", live.Stream)
		auth.GET("/votes/verify/:hash", votes.Verify)
	}

	admin := auth.Group("/admin")
	admin.Use(middleware.RequireAdmin())
	{
		admin.POST("/users", elections.RegisterMember)

		admin.POST("/elections", elections.Create)
		admin.GET("/elections", elections.List)
		admin.POST("/elections/:id/options", elections.AddOption)
		admin.POST("/elections/:id/cancel", elections.Cancel)
		admin.DELETE("/elections/:id", elections.Delete)

		admin.GET("/elections/:id/voters", voters.List)
		admin.POST("/elections/:id/voters", voters.Add)
		admin.POST("/elections/:id/voters/bulk", voters.BulkAdd)
		admin.GET("/elections/:id/voters/stats", voters.Stats)
		admin.DELETE("/elections/:id/voters/:userId", voters.Remove)
		admin.PATCH("/elections/:id/voters/:userId/eligibility", voters.SetEligibility)
	}
}
