package collections

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SystemCollectionName labels the one collection per owner whose membership
// is derived from record status instead of chosen by the user.
const SystemCollectionName = "Available works"

type Collection struct {
	ID     string `gorm:"type:uuid;primaryKey" json:"id"`
	UserID uint   `gorm:"not null;index" json:"-"`

	Name     string `gorm:"not null" json:"name"`
	IsSystem bool   `gorm:"not null;default:false" json:"is_system"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c *Collection) BeforeCreate(*gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// RecordCollection is the membership link. Reconciliation always rewrites
// the full set for a record, never a diff.
type RecordCollection struct {
	RecordID     string `gorm:"type:uuid;primaryKey"`
	CollectionID string `gorm:"type:uuid;primaryKey"`

	CreatedAt time.Time
}

// EnsureSystemCollection returns the owner's system collection, creating it
// on first use. Pass db in, do not import the database package here.
func EnsureSystemCollection(db *gorm.DB, userID uint) (Collection, error) {
	var col Collection
	err := db.Where(Collection{UserID: userID, IsSystem: true}).
		Attrs(Collection{Name: SystemCollectionName}).
		FirstOrCreate(&col).Error
	return col, err
}
