package collections

import (
	"errors"
	"net/http"

	"atelier-app/database"
	"atelier-app/internal/domain/collections"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func mustUserID(c *gin.Context) (uint, bool) {
	userID := c.GetUint("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return 0, false
	}
	return userID, true
}

type CreateCollectionRequest struct {
	Name string `json:"name" binding:"required"`
}

// ------------------------------
// GET /collections
// ------------------------------
func ListCollections(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	// The system collection exists from the first listing on.
	if _, err := collections.EnsureSystemCollection(database.DB, userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load collections"})
		return
	}

	var cols []collections.Collection
	err := database.DB.
		Where("user_id = ?", userID).
		Order("is_system DESC, created_at ASC").
		Find(&cols).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load collections"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"collections": cols})
}

// ------------------------------
// POST /collections
// ------------------------------
func CreateCollection(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	var req CreateCollectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	col := collections.Collection{UserID: userID, Name: req.Name}
	if err := database.DB.Create(&col).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create collection"})
		return
	}

	c.JSON(http.StatusCreated, col)
}

// ------------------------------
// DELETE /collections/:id
// ------------------------------
func DeleteCollection(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	id := c.Param("id")

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var col collections.Collection
		if err := tx.First(&col, "id = ? AND user_id = ?", id, userID).Error; err != nil {
			return err
		}
		if col.IsSystem {
			return errSystemCollection
		}
		if err := tx.Where("collection_id = ?", id).
			Delete(&collections.RecordCollection{}).Error; err != nil {
			return err
		}
		return tx.Delete(&col).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Collection not found"})
			return
		}
		if errors.Is(err, errSystemCollection) {
			c.JSON(http.StatusForbidden, gin.H{"error": "The system collection cannot be deleted"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete collection"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

var errSystemCollection = errors.New("system collection")
