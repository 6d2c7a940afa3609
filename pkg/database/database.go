package database

import (
	"fmt"
	"log"

	"hr_training_backend/internal/config"
	"hr_training_backend/internal/model"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	err = db.AutoMigrate(
		&model.User{},
		&model.TrainingModule{},
		&model.Lesson{},
		&model.QuizQuestion{},
		&model.Enrollment{},
		&model.LessonCompletion{},
		&model.AssessmentSubmission{},
		&model.AssessmentAnswer{},
		&model.ChatMessage{},
		&model.Material{},
	)

	if err != nil {
		return nil, err
	}

	log.Println("Database migration completed")

	// 默认入职培训模块（空库时插入，方便演示环境开箱可用）
	var count int64
	db.Model(&model.TrainingModule{}).Count(&count)
	if count == 0 {
		seed := &model.TrainingModule{
			Title:       "新员工入职指南",
			Description: "公司制度、信息安全与合规的基础培训",
			Content:     "欢迎加入。本模块涵盖考勤与休假制度、信息安全红线、数据合规要求等入职必修内容。",
			Category:    "onboarding",
			Duration:    60,
			Published:   true,
			Lessons: []model.Lesson{
				{Title: "公司制度概览", Content: "考勤、休假、报销等日常制度说明。", Order: 1},
				{Title: "信息安全基础", Content: "密码管理、钓鱼邮件识别、设备安全要求。", Order: 2},
			},
		}
		db.Create(seed)
	}

	return db, nil
}
