package tags

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Tag struct {
	ID     string `gorm:"type:uuid;primaryKey" json:"id"`
	UserID uint   `gorm:"not null;uniqueIndex:idx_tags_user_name,priority:1" json:"-"`

	Name string `gorm:"not null;uniqueIndex:idx_tags_user_name,priority:2" json:"name"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (t *Tag) BeforeCreate(*gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// RecordTag links a record to its selected tag set.
type RecordTag struct {
	RecordID string `gorm:"type:uuid;primaryKey"`
	TagID    string `gorm:"type:uuid;primaryKey"`

	CreatedAt time.Time
}

// FindOrCreate resolves a typed tag name to an owner-scoped tag, creating it
// when unseen. Names are trimmed; duplicates collapse onto the existing row.
func FindOrCreate(db *gorm.DB, userID uint, name string) (Tag, error) {
	var tag Tag
	err := db.Where(Tag{UserID: userID, Name: strings.TrimSpace(name)}).
		FirstOrCreate(&tag).Error
	return tag, err
}

// Keywords flattens a selected tag set into the record's keyword list:
// unique names, sorted for a stable persisted value.
func Keywords(selected []Tag) []string {
	seen := make(map[string]bool, len(selected))
	out := make([]string, 0, len(selected))
	for _, t := range selected {
		name := strings.TrimSpace(t.Name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
