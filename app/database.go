package app

import (
	"fmt"
	"io"
	"log"
	"time"

	"core/internal/model"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const DBTimeout = 10 * time.Second

// DatabaseConfig is the optional MySQL audit mirror. When no host is
// configured the service runs store-only and audit writes become
// no-ops.
type DatabaseConfig struct {
	*gorm.DB
	Host        string `envconfig:"DB_HOST"`
	Username    string `envconfig:"DB_USER"`
	Password    string `envconfig:"DB_PASSWORD"`
	DBName      string `envconfig:"DB_NAME"`
	Port        int    `envconfig:"DB_PORT" default:"3306"`
	MaxIdleConn int    `envconfig:"MAX_IDLE_CONN"`
	MaxOpenConn int    `envconfig:"MAX_OPEN_CONN"`
	MaxLifetime int    `envconfig:"MAX_LIFE_TIME_PER_CONN"`
	Debug       bool   `envconfig:"DB_DEBUG"`
}

// Setup connects and migrates the audit tables.
func (dbConf *DatabaseConfig) Setup() {

	if dbConf.Host == "" {
		logrus.Warn("DB_HOST is not set, audit database disabled")
		return
	}

	// Force GORM logger to silent and discard output to prevent SQL logs
	// being printed to stdout. If you later need SQL logs, enable DB_DEBUG
	// and rework this section.
	newLogger := logger.New(
		log.New(io.Discard, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Silent,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local", dbConf.Username, dbConf.Password, dbConf.Host, dbConf.Port, dbConf.DBName)

	db, err := gorm.Open(
		mysql.New(mysql.Config{
			DSN:               dsn,
			DefaultStringSize: 256,
		}),
		&gorm.Config{
			PrepareStmt: true,
			Logger:      newLogger,
		},
	)

	if err != nil {
		logrus.Fatal("Failed to connect to database:", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		logrus.Fatal("Failed to get sql.DB from gorm:", err)
	}

	if dbConf.MaxOpenConn > 0 {
		sqlDB.SetMaxOpenConns(dbConf.MaxOpenConn)
	} else {
		sqlDB.SetMaxOpenConns(20) // default
	}

	if dbConf.MaxIdleConn > 0 {
		sqlDB.SetMaxIdleConns(dbConf.MaxIdleConn)
	} else {
		sqlDB.SetMaxIdleConns(10) // default
	}

	if dbConf.MaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(dbConf.MaxLifetime) * time.Minute)
	} else {
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	dbConf.DB = db

	models := []interface{}{
		&model.DeliveryLog{},
		&model.RequestLog{},
	}

	for _, m := range models {
		if err := db.AutoMigrate(m); err != nil {
			logrus.Warn("AutoMigrate error:", err)
		}
	}

	logrus.Info("Audit database connection established & migration completed")
}

// Enabled reports whether the audit mirror is connected.
func (dbConf *DatabaseConfig) Enabled() bool {
	return dbConf != nil && dbConf.DB != nil
}
