package main

import (
	"context"
	"log"
	"time"

	"atelier-app/config"
	"atelier-app/database"
	recordsapi "atelier-app/internal/api/records"
	routes "atelier-app/internal/app/http"
	"atelier-app/internal/editor"
	"atelier-app/internal/infra/jobs"
	"atelier-app/internal/infra/persistence"
	"atelier-app/internal/infra/storage"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	// gin.SetMode(gin.ReleaseMode) uncomment only in production
	config.LoadEnv()
	database.InitDB()

	blob, err := storage.OpenFromEnv(context.Background())
	if err != nil {
		log.Fatal("Failed to open object storage:", err)
	}

	store := persistence.NewStore(database.DB)
	trigger := jobs.NewTrigger(config.JOBS_WEBHOOK_URL)
	defer trigger.Close()

	recordsapi.Init(editor.NewOrchestrator(store, trigger), store, blob)

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{config.CORS_ORIGIN},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.RegisterRoutes(r)

	r.Run(":" + config.PORT)
}
