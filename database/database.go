package database

import (
	"context"
	"fmt"
	"strconv"
	"time"

	config "github.com/anjiri1684/travel_agency/configs"
	"github.com/anjiri1684/travel_agency/models"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

func ConnectDB(cfg *config.AppConfig, log logrus.FieldLogger) (*gorm.DB, error) {
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}

	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case "mysql":
		dialector = mysql.Open(cfg.DatabaseURL)
	case "postgres", "":
		dialector = postgres.Open(cfg.DatabaseURL)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		PrepareStmt:                              false,
		SkipDefaultTransaction:                   true,
		DisableForeignKeyConstraintWhenMigrating: true,
		DisableNestedTransaction:                 true,
		TranslateError:                           true,
		Logger: gormlogger.New(log, gormlogger.Config{
			SlowThreshold:             500 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	log.WithField("driver", cfg.DBDriver).Info("Database connected successfully")
	return db, nil
}

func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Package{},
		&models.Booking{},
		&models.PaymentRecord{},
		&models.Setting{},
		&models.FormResponse{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

func SeedAdmin(ctx context.Context, db *gorm.DB, cfg *config.AppConfig, log logrus.FieldLogger) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		log.Warn("ADMIN_EMAIL or ADMIN_PASSWORD not set, skipping admin seed")
		return nil
	}

	var count int64
	if err := db.WithContext(ctx).Model(&models.User{}).Where("email = ?", cfg.AdminEmail).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check for admin user: %w", err)
	}
	if count > 0 {
		log.Debug("Admin user already exists")
		return nil
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	adminUser := models.User{
		FullName: cfg.AdminFullName,
		Email:    cfg.AdminEmail,
		Password: string(hashedPassword),
		Role:     models.RoleAdmin,
		IsActive: true,
	}
	if err := db.WithContext(ctx).Create(&adminUser).Error; err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}

	log.WithField("email", cfg.AdminEmail).Info("Admin user seeded successfully")
	return nil
}

// SeedSettings writes gateway settings from the environment for keys that are not stored yet.
// Values already edited through the admin API win.
func SeedSettings(ctx context.Context, db *gorm.DB, cfg *config.AppConfig) error {
	seed := map[string]string{
		models.SettingPaymentCurrency: cfg.GatewayCurrency,
	}
	if cfg.GatewayKeyID != "" && cfg.GatewayKeySecret != "" {
		seed[models.SettingPaymentEnabled] = strconv.FormatBool(true)
		seed[models.SettingPaymentKeyID] = cfg.GatewayKeyID
		seed[models.SettingPaymentKeySecret] = cfg.GatewayKeySecret
	}
	if cfg.GatewayWebhookSecret != "" {
		seed[models.SettingPaymentWebhookSecret] = cfg.GatewayWebhookSecret
	}
	if cfg.EmailSender != "" {
		seed[models.SettingBusinessEmail] = cfg.EmailSender
	}
	seed[models.SettingBusinessName] = cfg.AppName

	rows := make([]models.Setting, 0, len(seed))
	for k, v := range seed {
		rows = append(rows, models.Setting{Key: k, Value: v})
	}
	return db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
}
