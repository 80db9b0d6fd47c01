package tags

import (
	"net/http"
	"strings"

	"atelier-app/database"
	"atelier-app/internal/domain/tags"

	"github.com/gin-gonic/gin"
)

func mustUserID(c *gin.Context) (uint, bool) {
	userID := c.GetUint("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return 0, false
	}
	return userID, true
}

type CreateTagRequest struct {
	Name string `json:"name" binding:"required"`
}

// ------------------------------
// GET /tags
// ------------------------------
func ListTags(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	var all []tags.Tag
	err := database.DB.
		Where("user_id = ?", userID).
		Order("name ASC").
		Find(&all).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load tags"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"tags": all})
}

// ------------------------------
// POST /tags  (find-or-create for a typed, previously unseen name)
// ------------------------------
func CreateTag(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	var req CreateTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}

	tag, err := tags.FindOrCreate(database.DB, userID, req.Name)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create tag"})
		return
	}

	c.JSON(http.StatusCreated, tag)
}
