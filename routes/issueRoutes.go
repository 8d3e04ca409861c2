package routes

import (
	"github.com/gin-gonic/gin"

	"civicfix-be/controllers"
	"civicfix-be/middlewares"
)

// IssueRoutes sets up the citizen-facing issue routes. The per-user Redis
// rate limit guards creation only.
func IssueRoutes(r *gin.Engine, ic *controllers.IssueController, dailyLimit int) {
	issue := r.Group("/api/issues", middlewares.AuthMiddleware())
	{
		issue.POST("", middlewares.IssueRateLimiter(dailyLimit), ic.CreateIssue)
		issue.GET("/mine", ic.GetMyIssues)
		issue.GET("/:id", ic.GetIssue)
	}
}
