package database

import (
	"fmt"
	"log"
	"os"
	"time"

	"baby-bliss/internal/config"
	"baby-bliss/internal/models"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func dialector(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case "mysql":
		return mysql.Open(dsn), nil
	case "postgres":
		return postgres.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

func gormLogger(verbose bool) gormlogger.Interface {
	level := gormlogger.Warn
	if verbose {
		level = gormlogger.Info
	}
	return gormlogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
			ParameterizedQueries:      true,
		},
	)
}

// Open connects with retries, migrates the schema and seeds the default admin.
func Open(cfg *config.Config, logger *zap.Logger) (*gorm.DB, error) {
	dial, err := dialector(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, err
	}

	var db *gorm.DB
	maxAttempts := cfg.Database.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	for i := 1; i <= maxAttempts; i++ {
		logger.Info("connecting to database",
			zap.String("driver", cfg.Database.Driver),
			zap.Int("attempt", i),
			zap.Int("max_attempts", maxAttempts),
		)

		db, err = gorm.Open(dial, &gorm.Config{Logger: gormLogger(!cfg.IsProduction())})
		if err == nil {
			break
		}

		logger.Warn("failed to connect to database", zap.Error(err))
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("connect to database after %d attempts: %w", maxAttempts, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	if err := Migrate(db); err != nil {
		return nil, err
	}

	if err := Seed(db, cfg.Auth, logger); err != nil {
		return nil, err
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// Seed creates the default admin when no admin exists and, on request,
// a pair of demo accounts.
func Seed(db *gorm.DB, auth config.AuthConfig, logger *zap.Logger) error {
	if err := createDefaultAdmin(db, auth, logger); err != nil {
		return err
	}
	if auth.SeedDemoUsers {
		seedDemoUsers(db, logger)
	}
	return nil
}

func createDefaultAdmin(db *gorm.DB, auth config.AuthConfig, logger *zap.Logger) error {
	var count int64
	if err := db.Model(&models.User{}).
		Where("role = ?", models.RoleAdmin).
		Count(&count).Error; err != nil {
		return fmt.Errorf("check admin user: %w", err)
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(auth.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash default admin password: %w", err)
	}

	admin := models.User{
		Username:     auth.AdminUsername,
		Email:        auth.AdminEmail,
		FullName:     "Administrator",
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
		IsActive:     true,
	}
	if err := db.Create(&admin).Error; err != nil {
		return fmt.Errorf("create default admin: %w", err)
	}

	logger.Info("created default admin user", zap.String("username", admin.Username))
	return nil
}

func seedDemoUsers(db *gorm.DB, logger *zap.Logger) {
	type seedUser struct {
		Username string
		Password string
		Role     models.UserRole
	}

	users := []seedUser{
		{Username: "staff", Password: "Staff123!", Role: models.RoleStaff},
		{Username: "viewer", Password: "Viewer123!", Role: models.RoleViewer},
	}

	for _, u := range users {
		var count int64
		if err := db.Model(&models.User{}).
			Where("username = ?", u.Username).
			Count(&count).Error; err != nil {
			logger.Warn("failed to check seed user", zap.String("username", u.Username), zap.Error(err))
			continue
		}
		if count > 0 {
			continue
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
		if err != nil {
			logger.Warn("failed to hash seed password", zap.String("username", u.Username), zap.Error(err))
			continue
		}

		user := models.User{
			Username:     u.Username,
			PasswordHash: string(hash),
			Role:         u.Role,
			IsActive:     true,
		}
		if err := db.Create(&user).Error; err != nil {
			logger.Warn("failed to create seed user", zap.String("username", u.Username), zap.Error(err))
			continue
		}

		logger.Info("created seed user", zap.String("username", u.Username), zap.String("role", string(u.Role)))
	}
}

// Ping is used by the health endpoint.
func Ping(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
