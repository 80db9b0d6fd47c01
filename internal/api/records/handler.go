package records

import (
	"errors"
	"net/http"

	"atelier-app/database"
	"atelier-app/internal/domain/collections"
	"atelier-app/internal/domain/gallery"
	recdomain "atelier-app/internal/domain/records"
	"atelier-app/internal/domain/tags"
	"atelier-app/internal/editor"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

var (
	engine *editor.Orchestrator
	store  editor.Persistence
	blob   editor.ObjectStorage
)

// Init wires the save engine, persistence and object storage; called once
// from main.
func Init(o *editor.Orchestrator, p editor.Persistence, storage editor.ObjectStorage) {
	engine = o
	store = p
	blob = storage
}

func mustUserID(c *gin.Context) (uint, bool) {
	userID := c.GetUint("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return 0, false
	}
	return userID, true
}

// loadOwnedRecord reads the :id record through the persistence port and
// scopes it to the caller. A record owned by someone else is a 404, not a
// 403, so record ids do not leak.
func loadOwnedRecord(c *gin.Context, userID uint) (recdomain.Record, bool) {
	rec, err := store.ReadRecord(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Record not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load record"})
		}
		return recdomain.Record{}, false
	}
	if rec.UserID == nil || *rec.UserID != userID {
		c.JSON(http.StatusNotFound, gin.H{"error": "Record not found"})
		return recdomain.Record{}, false
	}
	return rec, true
}

// ------------------------------
// GET /records
// ------------------------------
func ListRecords(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	var recs []recdomain.Record
	err := userRecordsQuery(database.DB, userID).
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Order("created_at DESC").
		Find(&recs).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load records"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"records": recs})
}

// ------------------------------
// GET /records/:id
// ------------------------------
func GetRecord(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	rec, ok := loadOwnedRecord(c, userID)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, rec)
}

// ------------------------------
// POST /records  (create through the save engine)
// ------------------------------
func CreateRecord(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	var req SaveRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	saveThroughEngine(c, userID, recdomain.New(userID), true, &req)
}

// ------------------------------
// PUT /records/:id
// ------------------------------
func UpdateRecord(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	var req SaveRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rec, ok := loadOwnedRecord(c, userID)
	if !ok {
		return
	}

	saveThroughEngine(c, userID, rec, false, &req)
}

func saveThroughEngine(c *gin.Context, userID uint, loaded recdomain.Record, isNew bool, req *SaveRecordRequest) {
	titleBefore := loaded.Title

	// Existing records carry their persisted images; a new record is seeded
	// from the pre-uploaded URLs in the request, ordered through the
	// gallery manager so the primary invariant holds from the start. The
	// engine attaches them once the record id exists.
	images := loaded.Images
	if isNew {
		m := gallery.NewManager(nil)
		for _, in := range req.Images {
			m.Append(gallery.Image{URL: in.URL})
		}
		images = m.Images()
	}

	state := recdomain.NewStore(loaded)
	snapshot := state.Apply(req.Updates()...)

	selectedTags, err := resolveTags(userID, snapshot.ID, req.TagIDs)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load tags"})
		return
	}
	collectionIDs, err := resolveCollections(userID, snapshot.ID, req.CollectionIDs)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load collections"})
		return
	}
	system, err := collections.EnsureSystemCollection(database.DB, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve system collection"})
		return
	}

	result, err := engine.Save(c.Request.Context(), editor.SaveInput{
		UserID:                userID,
		Record:                snapshot,
		IsNew:                 isNew,
		TitleChanged:          !isNew && snapshot.Title != titleBefore,
		Images:                images,
		SelectedTags:          selectedTags,
		SelectedCollectionIDs: collectionIDs,
		SystemCollectionID:    system.ID,
		Regeneration: editor.RegenerationOptions{
			ForceWatermark:     req.ForceWatermark,
			ForceVisualization: req.ForceVisualization,
		},
	})
	if err != nil {
		respondSaveError(c, result, err)
		return
	}

	status := http.StatusOK
	if isNew {
		status = http.StatusCreated
	}
	c.JSON(status, SaveResponse{ID: result.RecordID, Slug: result.Slug, Warnings: result.Warnings})
}

func respondSaveError(c *gin.Context, result editor.SaveResult, err error) {
	if errors.Is(err, editor.ErrSaveInFlight) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	if se, ok := editor.AsSaveError(err); ok {
		switch se.Kind {
		case editor.ValidationFailed:
			c.JSON(http.StatusUnprocessableEntity, ValidationErrorResponse{
				Error:       "Validation failed",
				FieldErrors: se.FieldErrors,
				Touched:     result.Touched,
			})
		case editor.SlugGenerationFailed:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate slug", "details": se.Err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save record", "details": se.Err.Error()})
		}
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save record", "details": err.Error()})
}

// resolveTags loads the selected tag set: the ids from the request when
// present, otherwise the record's persisted selection.
func resolveTags(userID uint, recordID string, tagIDs *[]string) ([]tags.Tag, error) {
	ids := []string{}
	if tagIDs != nil {
		ids = *tagIDs
	} else if recordID != "" {
		var links []tags.RecordTag
		if err := database.DB.Where("record_id = ?", recordID).Find(&links).Error; err != nil {
			return nil, err
		}
		for _, l := range links {
			ids = append(ids, l.TagID)
		}
	}
	if len(ids) == 0 {
		return nil, nil
	}

	var selected []tags.Tag
	err := database.DB.Where("id IN ? AND user_id = ?", ids, userID).Find(&selected).Error
	return selected, err
}

// resolveCollections mirrors resolveTags for user-chosen memberships. The
// system collection is excluded here; the engine derives it from status.
func resolveCollections(userID uint, recordID string, collectionIDs *[]string) ([]string, error) {
	var ids []string
	if collectionIDs != nil {
		ids = *collectionIDs
	} else if recordID != "" {
		var links []collections.RecordCollection
		if err := database.DB.Where("record_id = ?", recordID).Find(&links).Error; err != nil {
			return nil, err
		}
		for _, l := range links {
			ids = append(ids, l.CollectionID)
		}
	}
	if len(ids) == 0 {
		return nil, nil
	}

	var owned []collections.Collection
	err := database.DB.
		Where("id IN ? AND user_id = ? AND is_system = false", ids, userID).
		Find(&owned).Error
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(owned))
	for _, col := range owned {
		out = append(out, col.ID)
	}
	return out, nil
}

// ------------------------------
// DELETE /records/:id
// ------------------------------
func DeleteRecord(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	id := c.Param("id")

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&recdomain.Record{}, "id = ? AND user_id = ?", id, userID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		if err := tx.Where("record_id = ?", id).Delete(&collections.RecordCollection{}).Error; err != nil {
			return err
		}
		return tx.Where("record_id = ?", id).Delete(&tags.RecordTag{}).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Record not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete record"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// ------------------------------
// GET /records/:id/editions
// ------------------------------
func GetEditionUnits(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	rec, ok := loadOwnedRecord(c, userID)
	if !ok {
		return
	}

	units := recdomain.EditionUnits(rec.Edition)
	out := make([]EditionUnitDTO, 0, len(units))
	for _, id := range units {
		out = append(out, EditionUnitDTO{Identifier: id, Sold: rec.Edition.IsSold(id)})
	}
	c.JSON(http.StatusOK, gin.H{"units": out})
}

// ------------------------------
// PUT /records/:id/editions
// ------------------------------
func ToggleEditionSale(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	var req ToggleEditionSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rec, ok := loadOwnedRecord(c, userID)
	if !ok {
		return
	}

	if err := engine.ToggleEditionSale(c.Request.Context(), rec.ID, req.Identifier, *req.Sold, req.ClearStale); err != nil {
		// Returned verbatim so the caller can revert its optimistic flip.
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update edition sale", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
