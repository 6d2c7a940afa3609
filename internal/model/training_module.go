package model

// TrainingModule 培训模块/课程，由HR创建，员工报名学习
type TrainingModule struct {
	BaseModel
	Title       string         `gorm:"size:255;not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	Content     string         `gorm:"type:longtext" json:"content"` // 自由文本的课程正文
	Category    string         `gorm:"size:100;index" json:"category"`
	Duration    int            `gorm:"default:0" json:"duration"` // 预计学习时长（分钟）
	Published   bool           `gorm:"default:false;index" json:"published"`
	AuthorID    uint           `gorm:"index" json:"authorId"`
	Author      User           `gorm:"foreignKey:AuthorID" json:"author"`
	Lessons     []Lesson       `gorm:"foreignKey:ModuleID" json:"lessons"`
	Questions   []QuizQuestion `gorm:"foreignKey:ModuleID" json:"questions"`
}

func (TrainingModule) TableName() string {
	return "training_modules"
}

// Lesson 模块内的课时，按 Order 排列
type Lesson struct {
	BaseModel
	ModuleID      uint   `gorm:"index;not null" json:"moduleId"`
	Title         string `gorm:"size:255;not null" json:"title"`
	Content       string `gorm:"type:longtext" json:"content"`
	VideoURL      string `gorm:"size:255" json:"videoUrl"`
	VideoDuration int    `gorm:"default:0" json:"videoDuration"` // 秒
	Order         int    `gorm:"default:0" json:"order"`
}

func (Lesson) TableName() string {
	return "lessons"
}
