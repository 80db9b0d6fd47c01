package persistence

import (
	"context"
	"fmt"

	"atelier-app/internal/domain/collections"
	"atelier-app/internal/domain/gallery"
	"atelier-app/internal/domain/records"
	"atelier-app/internal/domain/tags"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store implements editor.Persistence on GORM/Postgres.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) ReadRecord(ctx context.Context, id string) (records.Record, error) {
	var rec records.Record
	err := s.db.WithContext(ctx).
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		First(&rec, "id = ?", id).Error
	return rec, err
}

func (s *Store) InsertRecord(ctx context.Context, rec records.Record) (records.Record, error) {
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return records.Record{}, err
	}
	return rec, nil
}

func (s *Store) UpdateRecord(ctx context.Context, rec records.Record) (records.Record, error) {
	if rec.ID == "" {
		return records.Record{}, fmt.Errorf("record id missing")
	}
	// Full-row save so cleared groups and nulled text columns land too;
	// a column map would silently skip zero values.
	if err := s.db.WithContext(ctx).
		Omit("Images", "created_at").
		Save(&rec).Error; err != nil {
		return records.Record{}, err
	}
	return rec, nil
}

// GenerateUniqueSlug derives the base slug from the title and suffixes with
// a counter until it is free among the owner's records.
func (s *Store) GenerateUniqueSlug(ctx context.Context, userID uint, title string) (string, error) {
	base := records.MakeSlug(title)

	slug := base
	for i := 2; ; i++ {
		var count int64
		err := s.db.WithContext(ctx).
			Model(&records.Record{}).
			Where("user_id = ? AND slug = ?", userID, slug).
			Count(&count).Error
		if err != nil {
			return "", err
		}
		if count == 0 {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}
}

// ReplaceMembership is a full replace inside one transaction, not a diff,
// so an interrupted update can never leave a partial set behind.
func (s *Store) ReplaceMembership(ctx context.Context, recordID string, collectionIDs []string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("record_id = ?", recordID).
			Delete(&collections.RecordCollection{}).Error; err != nil {
			return err
		}
		for _, cid := range collectionIDs {
			link := collections.RecordCollection{RecordID: recordID, CollectionID: cid}
			if err := tx.Create(&link).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) ReplaceTags(ctx context.Context, recordID string, tagIDs []string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("record_id = ?", recordID).
			Delete(&tags.RecordTag{}).Error; err != nil {
			return err
		}
		for _, tid := range tagIDs {
			link := tags.RecordTag{RecordID: recordID, TagID: tid}
			if err := tx.Create(&link).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) ListImages(ctx context.Context, recordID string) ([]gallery.Image, error) {
	var imgs []gallery.Image
	err := s.db.WithContext(ctx).
		Where("record_id = ?", recordID).
		Order("position ASC").
		Find(&imgs).Error
	return imgs, err
}

func (s *Store) InsertImage(ctx context.Context, img gallery.Image) (gallery.Image, error) {
	if err := s.db.WithContext(ctx).Create(&img).Error; err != nil {
		return gallery.Image{}, err
	}
	return img, nil
}

func (s *Store) DeleteImage(ctx context.Context, imageID string) error {
	res := s.db.WithContext(ctx).Delete(&gallery.Image{}, "id = ?", imageID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (s *Store) UpdateImageURL(ctx context.Context, imageID, url string) error {
	res := s.db.WithContext(ctx).
		Model(&gallery.Image{}).
		Where("id = ?", imageID).
		Update("url", url)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SetImageOrder renumbers the whole collection in one transaction. Position
// and primary flag are recomputed from scratch from the given ordering, so
// replaying the call is idempotent.
func (s *Store) SetImageOrder(ctx context.Context, recordID string, orderedIDs []string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&gallery.Image{}).
			Where("record_id = ?", recordID).
			Count(&count).Error; err != nil {
			return err
		}
		if int(count) != len(orderedIDs) {
			return fmt.Errorf("ordering lists %d images, record has %d", len(orderedIDs), count)
		}

		for i, id := range orderedIDs {
			res := tx.Model(&gallery.Image{}).
				Where("id = ? AND record_id = ?", id, recordID).
				Updates(map[string]interface{}{
					"position":   i,
					"is_primary": i == 0,
				})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("image %s does not belong to record %s", id, recordID)
			}
		}
		return nil
	})
}

// UpdateEditionSale flips one identifier in the sold set inside a
// transaction, so concurrent toggles cannot clobber each other's writes.
func (s *Store) UpdateEditionSale(ctx context.Context, recordID, identifier string, sold, clearStale bool) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rec records.Record
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&rec, "id = ?", recordID).Error; err != nil {
			return err
		}
		if rec.Edition == nil || !rec.Edition.IsEdition {
			return fmt.Errorf("record %s is not an edition", recordID)
		}

		st := records.NewStore(rec)
		rec = st.Apply(records.ToggleEditionSold{Identifier: identifier, Sold: sold})
		if clearStale {
			rec.Edition = records.PruneSoldEditions(rec.Edition)
		}

		return tx.Model(&records.Record{}).
			Where("id = ?", recordID).
			Update("edition", rec.Edition).Error
	})
}
