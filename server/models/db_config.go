package models

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	sqliteEncrypt "github.com/Daskott/gorm-sqlite-cipher"
	"github.com/pkg/errors"
	"github.com/zivilschutz/zsadmin/server/logger"
	"github.com/zivilschutz/zsadmin/shared"
	"github.com/zivilschutz/zsadmin/utils"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

const DB_NAME = "zsadmin.db"

var logg = logger.NewLogger()
var db *gorm.DB

// AutoMigrate opens the database, migrates the schema and inserts seed data.
func AutoMigrate(config shared.DatabaseConfig, dbRootDir string) error {
	err := openDB(config, dbRootDir)
	if err != nil {
		return err
	}

	return migrate()
}

// DbFilePath is where the sqlite database file lives for the given root directory.
func DbFilePath(dbRootDir string) (string, error) {
	dbDir, err := DbDirectory(dbRootDir)
	if err != nil {
		return "", err
	}

	return filepath.Join(dbDir, DB_NAME), nil
}

func DbDirectory(dbRootDir string) (string, error) {
	dbDir := filepath.Join(dbRootDir, "db")

	err := utils.CreateDirIfNotExist(dbDir)
	if err != nil {
		return "", err
	}

	return dbDir, nil
}

// ---------------------------------------------------------------------------------//
// Helper functions
// --------------------------------------------------------------------------------//

func openDB(config shared.DatabaseConfig, dbRootDir string) error {
	var dialector gorm.Dialector

	if config.MysqlDSN != "" {
		logg.Info("Using mysql database")
		dialector = mysql.Open(config.MysqlDSN)
	} else {
		dsn, err := sqliteDSN(config.Sqlite.PassPhrase, dbRootDir)
		if err != nil {
			return fmt.Errorf("failed to set sqlite DSN: %v", err)
		}
		dialector = sqliteEncrypt.Open(dsn)
	}

	var err error
	db, err = gorm.Open(dialector, gormConfig())
	if err != nil {
		return fmt.Errorf("failed to connect database: %v", err)
	}

	if config.MysqlDSN == "" {
		return singleConnection()
	}

	return nil
}

// sqlite handles one writer at a time; a single connection avoids "database is locked".
func singleConnection() error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	sqlDB.SetMaxOpenConns(1)

	return nil
}

func gormConfig() *gorm.Config {
	return &gorm.Config{
		Logger: gormLogger.New(
			log.New(os.Stdout, "\r\n", log.LstdFlags),
			gormLogger.Config{
				LogLevel:                  gormLogger.Silent,
				IgnoreRecordNotFoundError: true,
				Colorful:                  false,
			},
		),
	}
}

func migrate() error {
	err := db.AutoMigrate(
		&Role{}, &User{}, &Session{},
		&Person{}, &Training{}, &Attendance{}, &EmergencyContact{}, &UploadedFile{},
		&JobStatus{}, &Job{},
	)
	if err != nil {
		return errors.Wrap(err, "auto migrate")
	}

	return populateDBWithSeedData()
}

func populateDBWithSeedData() error {
	var count int64

	if err := db.Model(&Role{}).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		logg.Info("Inserting seed data into 'Role'")
		roles := seedRoles()
		if err := db.Create(&roles).Error; err != nil {
			return err
		}
	}

	if err := db.Model(&JobStatus{}).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		logg.Info("Inserting seed data into 'JobStatus'")
		statuses := seedJobStatuses()
		if err := db.Create(&statuses).Error; err != nil {
			return err
		}
	}

	return nil
}

func sqliteDSN(passPhrase string, dbRootDir string) (string, error) {
	dbFilePath, err := DbFilePath(dbRootDir)
	if err != nil {
		return "", err
	}

	dsn := fmt.Sprintf("file:%v?_journal_mode=WAL", dbFilePath)
	if passPhrase != "" {
		dsn = fmt.Sprintf("file:%v?_pragma_key=%s&_pragma_cipher_page_size=4096&_journal_mode=WAL",
			dbFilePath, passPhrase)
	}

	return dsn, nil
}
