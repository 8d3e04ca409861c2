package controllers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"civicfix-be/apperrors"
	"civicfix-be/auth"
	"civicfix-be/middlewares"
)

// respondError maps a service error to its HTTP response. AppErrors carry
// their own status code and type; anything else is a generic 500.
func respondError(c *gin.Context, err error) {
	if appErr := apperrors.GetAppError(err); appErr != nil {
		if appErr.Type == apperrors.ErrorTypeInternal {
			slog.Error("internal error", "error", err, "path", c.FullPath())
		}
		c.JSON(appErr.Code, gin.H{"error": appErr.Message, "type": appErr.Type})
		return
	}
	slog.Error("unhandled error", "error", err, "path", c.FullPath())
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
}

func requirePrincipal(c *gin.Context) (auth.Principal, bool) {
	principal, ok := middlewares.PrincipalFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return auth.Principal{}, false
	}
	return principal, true
}
