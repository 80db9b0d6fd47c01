package records

import (
	recdomain "atelier-app/internal/domain/records"

	"gorm.io/gorm"
)

func userRecordsQuery(db *gorm.DB, userID uint) *gorm.DB {
	return db.Model(&recdomain.Record{}).
		Where("user_id = ?", userID)
}
