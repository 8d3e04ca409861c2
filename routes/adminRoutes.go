package routes

import (
	"github.com/gin-gonic/gin"

	"civicfix-be/controllers"
	"civicfix-be/middlewares"
)

// AdminRoutes sets up the triage routes. Capability checks live in the issue
// service, so a non-staff token gets through the auth middleware here and is
// rejected with a forbidden error by the service itself.
func AdminRoutes(r *gin.Engine, ic *controllers.IssueController) {
	admin := r.Group("/api/admin/issues", middlewares.AuthMiddleware())
	{
		admin.GET("", ic.GetAllIssues)
		admin.GET("/summary", ic.GetSummary)
		admin.PATCH("/:id", ic.UpdateIssue)
		admin.DELETE("/:id", ic.DeleteIssue)
	}
}
