package gallery

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Image struct {
	ID       string `gorm:"type:uuid;primaryKey" json:"id"`
	RecordID string `gorm:"type:uuid;not null;index:idx_images_record_position,priority:1" json:"-"`

	URL string `gorm:"not null" json:"url"`

	Position  int  `gorm:"not null;default:0;index:idx_images_record_position,priority:2" json:"position"`
	IsPrimary bool `gorm:"not null;default:false" json:"is_primary"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (i *Image) BeforeCreate(*gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}
