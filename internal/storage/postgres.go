package storage

import (
	"fmt"
	"log"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/campusjam/CampusJam/internal/models"
)

// InitPostgres 初始化 PostgreSQL 连接并迁移全部模型
func InitPostgres(dsn string, maxIdleConns, maxOpenConns int) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true, // map unique violations to gorm.ErrDuplicatedKey
	})
	if err != nil {
		log.Printf("failed to connect to postgres: %v", err)
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetMaxOpenConns(maxOpenConns)

	err = db.AutoMigrate(
		&models.User{},
		&models.Follow{},
		&models.Block{},
		&models.Session{},
		&models.SessionAttendee{}, // 中间表模型，确保联合主键索引被创建
		&models.SessionInvite{},
		&models.DirectMessage{},
		&models.SessionMessage{},
		&models.Notification{},
		&models.Report{},
	)
	if err != nil {
		log.Printf("auto migration failed: %v", err)
		return nil, err
	}
	return db, nil
}

// BuildDSN 构建 PostgreSQL DSN
func BuildDSN(host, port, user, password, dbname string) string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable", host, port, user, password, dbname)
}
