package database

import (
	"fmt"
	"lingo_backend/internal/config"
	"lingo_backend/internal/model"
	"log"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	if cfg.Driver == "sqlite" {
		// sqlite 只允许单写连接，内存库也需要共享同一连接
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	log.Println("Database connection established")
	return db, nil
}

func dialectorFor(cfg *config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case "", "mysql":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
			cfg.User,
			cfg.Password,
			cfg.Host,
			cfg.Port,
			cfg.DBName,
			cfg.Charset,
			cfg.ParseTime,
		)
		return mysql.Open(dsn), nil
	case "postgres":
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable",
			cfg.Host,
			cfg.User,
			cfg.Password,
			cfg.DBName,
			cfg.Port,
		)
		return postgres.Open(dsn), nil
	case "sqlite":
		return sqlite.Open(cfg.Path), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}
}

func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&model.Course{},
		&model.Lesson{},
		&model.Question{},
		&model.QuestionAttempt{},
		&model.LessonProgress{},
		&model.Certificate{},
	)
	if err != nil {
		return err
	}

	log.Println("Database migration completed")
	return nil
}

// Seed 数据库为空时写入演示课程
func Seed(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.Course{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	course := &model.Course{
		Title:       "English for Beginners",
		Description: "Greetings, numbers and everyday phrases.",
		Language:    "en",
		Lessons: []model.Lesson{
			{
				Title:   "Greetings and Numbers",
				Content: "Say hello and count to ten.",
				Order:   1,
				Questions: []model.Question{
					{Prompt: "Translate \"Hola\" into English.", CorrectAnswer: "Hello", Order: 1},
					{Prompt: "How many fingers are on one hand?", CorrectAnswer: "5", Order: 2},
				},
			},
			{
				Title:   "Reading: At the Cafe",
				Content: "A short dialogue between a customer and a waiter.",
				Order:   2,
			},
			{
				Title:   "Colours",
				Content: "Basic colour words.",
				Order:   3,
				Questions: []model.Question{
					{Prompt: "What colour is the sky on a clear day?", CorrectAnswer: "blue", Order: 1},
					{Prompt: "What colour is grass?", CorrectAnswer: "green", Order: 2},
					{Prompt: "Mix red and white to get ...", CorrectAnswer: "pink", Order: 3},
				},
			},
		},
	}

	if err := db.Create(course).Error; err != nil {
		return err
	}

	log.Println("Seeded demo course")
	return nil
}
