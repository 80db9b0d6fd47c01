package records

import (
	"errors"
	"fmt"
	"net/http"
	"path"

	"atelier-app/internal/domain/gallery"
	"atelier-app/internal/editor"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// mustOwnRecord resolves the :id record scoped to the caller.
func mustOwnRecord(c *gin.Context, userID uint) (string, bool) {
	rec, ok := loadOwnedRecord(c, userID)
	if !ok {
		return "", false
	}
	return rec.ID, true
}

func loadManager(c *gin.Context, recordID string) (*gallery.Manager, bool) {
	imgs, err := store.ListImages(c.Request.Context(), recordID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load images"})
		return nil, false
	}
	return gallery.NewManager(imgs), true
}

// persistOrder writes the manager's full ordering back in one call.
func persistOrder(c *gin.Context, recordID string, m *gallery.Manager) bool {
	if err := store.SetImageOrder(c.Request.Context(), recordID, m.OrderedIDs()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to persist image order", "details": err.Error()})
		return false
	}
	return true
}

// reactToEvents turns gallery events into the response payload: a primary
// change triggers metadata regeneration, an emptied collection becomes a
// destructive warning.
func reactToEvents(recordID string, events []gallery.Event) (warnings []string) {
	for _, ev := range events {
		switch ev {
		case gallery.EventPrimaryChanged:
			if err := engine.NotifyPrimaryChanged(recordID, editor.RegenerationOptions{}); err != nil {
				warnings = append(warnings, "image metadata regeneration was not triggered: "+err.Error())
			}
		case gallery.EventCollectionEmptied:
			warnings = append(warnings, "the record has no images left; image-derived fields should be cleared")
		}
	}
	return warnings
}

// ------------------------------
// POST /uploads  (bytes -> object storage -> url, no record attached yet)
// ------------------------------
func UploadFile(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file field required"})
		return
	}
	defer file.Close()

	key := fmt.Sprintf("uploads/%d/%s%s", userID, uuid.NewString(), path.Ext(header.Filename))
	url, err := blob.Upload(c.Request.Context(), key, file, header.Header.Get("Content-Type"))
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Upload failed", "details": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"url": url})
}

// ------------------------------
// POST /records/:id/images  (upload and append)
// ------------------------------
func UploadImage(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	recordID, ok := mustOwnRecord(c, userID)
	if !ok {
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file field required"})
		return
	}
	defer file.Close()

	key := fmt.Sprintf("records/%s/%s%s", recordID, uuid.NewString(), path.Ext(header.Filename))
	url, err := blob.Upload(c.Request.Context(), key, file, header.Header.Get("Content-Type"))
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Upload failed", "details": err.Error()})
		return
	}

	m, ok := loadManager(c, recordID)
	if !ok {
		return
	}
	img := m.Append(gallery.Image{RecordID: recordID, URL: url})

	saved, err := store.InsertImage(c.Request.Context(), img)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to attach image", "details": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, saved)
}

// ------------------------------
// PUT /records/:id/image-order
// ------------------------------
func ReorderImages(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	recordID, ok := mustOwnRecord(c, userID)
	if !ok {
		return
	}

	var req ReorderImagesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from_index and to_index required"})
		return
	}

	m, ok := loadManager(c, recordID)
	if !ok {
		return
	}
	events, err := m.Reorder(*req.FromIndex, *req.ToIndex)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !persistOrder(c, recordID, m) {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"images":   m.Images(),
		"warnings": reactToEvents(recordID, events),
	})
}

// ------------------------------
// PUT /records/:id/images/:imageId/primary
// ------------------------------
func SetPrimaryImage(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	recordID, ok := mustOwnRecord(c, userID)
	if !ok {
		return
	}

	m, ok := loadManager(c, recordID)
	if !ok {
		return
	}
	events, err := m.SetPrimary(c.Param("imageId"))
	if err != nil {
		if errors.Is(err, gallery.ErrImageNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Image not found"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !persistOrder(c, recordID, m) {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"images":   m.Images(),
		"warnings": reactToEvents(recordID, events),
	})
}

// ------------------------------
// PUT /records/:id/images/:imageId  (replace url, keeps slot)
// ------------------------------
func ReplaceImage(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	recordID, ok := mustOwnRecord(c, userID)
	if !ok {
		return
	}

	var req ReplaceImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	m, ok := loadManager(c, recordID)
	if !ok {
		return
	}
	imageID := c.Param("imageId")
	events, err := m.Replace(imageID, req.URL)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Image not found"})
		return
	}
	if err := store.UpdateImageURL(c.Request.Context(), imageID, req.URL); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to replace image", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"images":   m.Images(),
		"warnings": reactToEvents(recordID, events),
	})
}

// ------------------------------
// DELETE /records/:id/images/:imageId
// ------------------------------
func DeleteImage(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	recordID, ok := mustOwnRecord(c, userID)
	if !ok {
		return
	}

	m, ok := loadManager(c, recordID)
	if !ok {
		return
	}
	imageID := c.Param("imageId")
	events, err := m.Delete(imageID)
	if err != nil {
		if errors.Is(err, gallery.ErrPrimaryImageProtected) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusNotFound, gin.H{"error": "Image not found"})
		return
	}

	if err := store.DeleteImage(c.Request.Context(), imageID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete image", "details": err.Error()})
		return
	}
	if m.Len() > 0 && !persistOrder(c, recordID, m) {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"images":   m.Images(),
		"warnings": reactToEvents(recordID, events),
	})
}
