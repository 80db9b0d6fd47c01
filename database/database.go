package database

import (
	"fmt"
	"log"
	"os"

	"atelier-app/internal/domain/collections"
	"atelier-app/internal/domain/gallery"
	"atelier-app/internal/domain/records"
	"atelier-app/internal/domain/tags"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func InitDB() {
	dsn := os.Getenv("DB_URL")
	if dsn == "" {
		log.Fatal("DB_URL not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	DB = db

	if err := DB.AutoMigrate(
		&records.Record{},
		&gallery.Image{},
		&collections.Collection{},
		&collections.RecordCollection{},
		&tags.Tag{},
		&tags.RecordTag{},
	); err != nil {
		log.Fatal("AutoMigrate error:", err)
	}

	fmt.Println("Connected and migrated successfully")
}
