package model

// AssessmentSubmission 一次测验提交及评分结果
type AssessmentSubmission struct {
	BaseModel
	UserID   uint               `gorm:"index;not null" json:"userId"`
	ModuleID uint               `gorm:"index;not null" json:"moduleId"`
	Score    float64            `gorm:"default:0" json:"score"` // 百分制
	Feedback string             `gorm:"type:text" json:"feedback"`
	Gaps     string             `gorm:"type:text" json:"gaps"` // Agent识别的知识缺口，换行分隔
	Answers  []AssessmentAnswer `gorm:"foreignKey:SubmissionID" json:"answers"`
}

func (AssessmentSubmission) TableName() string {
	return "assessment_submissions"
}

// AssessmentAnswer 单题作答记录
type AssessmentAnswer struct {
	BaseModel
	SubmissionID uint    `gorm:"index;not null" json:"submissionId"`
	QuestionID   uint    `gorm:"index;not null" json:"questionId"`
	Response     string  `gorm:"type:text" json:"response"`
	Correct      *bool   `json:"correct"`                // 客观题判定结果，主观题为 nil
	Score        float64 `gorm:"default:0" json:"score"` // 该题得分
	Feedback     string  `gorm:"type:text" json:"feedback"`
}

func (AssessmentAnswer) TableName() string {
	return "assessment_answers"
}
