package routes

import (
	collectionsapi "atelier-app/internal/api/collections"
	recordsapi "atelier-app/internal/api/records"
	tagsapi "atelier-app/internal/api/tags"
	"atelier-app/internal/app/http/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Authenticated
	auth := r.Group("/")
	auth.Use(middleware.AuthMiddleware(), middleware.SanitizeInputMiddleware())

	auth.POST("/uploads", recordsapi.UploadFile)

	auth.GET("/records", recordsapi.ListRecords)
	auth.POST("/records", recordsapi.CreateRecord)
	auth.GET("/records/:id", recordsapi.GetRecord)
	auth.PUT("/records/:id", recordsapi.UpdateRecord)
	auth.DELETE("/records/:id", recordsapi.DeleteRecord)

	auth.POST("/records/:id/images", recordsapi.UploadImage)
	auth.PUT("/records/:id/image-order", recordsapi.ReorderImages)
	auth.PUT("/records/:id/images/:imageId", recordsapi.ReplaceImage)
	auth.PUT("/records/:id/images/:imageId/primary", recordsapi.SetPrimaryImage)
	auth.DELETE("/records/:id/images/:imageId", recordsapi.DeleteImage)

	auth.GET("/records/:id/editions", recordsapi.GetEditionUnits)
	auth.PUT("/records/:id/editions", recordsapi.ToggleEditionSale)

	auth.GET("/collections", collectionsapi.ListCollections)
	auth.POST("/collections", collectionsapi.CreateCollection)
	auth.DELETE("/collections/:id", collectionsapi.DeleteCollection)

	auth.GET("/tags", tagsapi.ListTags)
	auth.POST("/tags", tagsapi.CreateTag)
}
