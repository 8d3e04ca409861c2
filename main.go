package main

import (
	"log/slog"
	"net/http"
	"os"
	"strconv"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"civicfix-be/config"
	"civicfix-be/controllers"
	"civicfix-be/logger"
	"civicfix-be/routes"
	"civicfix-be/services"
	"civicfix-be/store"
)

const defaultDailyIssueLimit = 10

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found")
	}
	logger.Init()

	db := config.ConnectDB()
	if db == nil {
		slog.Error("Failed to connect to MongoDB")
		os.Exit(1)
	}
	config.ConnectRedis()

	issueStore := store.NewMongoIssueStore(db.Collection("issues"))
	userStore := store.NewMongoUserStore(db.Collection("users"))

	issueService := services.NewIssueService(issueStore, userStore, slog.Default())
	issueController := controllers.NewIssueController(issueService)
	authController := controllers.NewAuthController(userStore)

	r := gin.Default()
	r.Use(cors.Default())

	routes.AuthRoutes(r, authController)
	routes.IssueRoutes(r, issueController, dailyIssueLimit())
	routes.AdminRoutes(r, issueController)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	addr := ":8080"
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}
	if err := r.Run(addr); err != nil {
		slog.Error("Failed to start server", "error", err)
		os.Exit(1)
	}
}

func dailyIssueLimit() int {
	if v := os.Getenv("ISSUE_DAILY_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return defaultDailyIssueLimit
}
