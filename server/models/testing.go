package models

import (
	"fmt"

	sqliteEncrypt "github.com/Daskott/gorm-sqlite-cipher"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InitializeTestDb points the package at a fresh, migrated in-memory database.
// Every call starts from an empty schema.
func InitializeTestDb() error {
	var err error

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err = gorm.Open(sqliteEncrypt.Open(dsn), gormConfig())
	if err != nil {
		return fmt.Errorf("failed to open test database: %v", err)
	}

	err = singleConnection()
	if err != nil {
		return err
	}

	return migrate()
}
