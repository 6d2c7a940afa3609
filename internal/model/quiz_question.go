package model

import "encoding/json"

type QuestionType string

const (
	MultipleChoice QuestionType = "multiple_choice"
	TrueFalse      QuestionType = "true_false"
	ShortAnswer    QuestionType = "short_answer"
	OpenEnded      QuestionType = "open_ended"
)

// QuizQuestion 模块测验题目，可由HR手工录入或由Agent生成
type QuizQuestion struct {
	BaseModel
	ModuleID    uint            `gorm:"index;not null" json:"moduleId"`
	Type        QuestionType    `gorm:"type:enum('multiple_choice','true_false','short_answer','open_ended');not null" json:"type"`
	Prompt      string          `gorm:"type:text;not null" json:"prompt"`
	Options     json.RawMessage `gorm:"type:json" json:"options"`
	Answer      string          `gorm:"type:text" json:"-"` // 参考答案不随题目下发给员工
	Explanation string          `gorm:"type:text" json:"explanation"`
	Points      int             `gorm:"default:10" json:"points"`
	Order       int             `gorm:"default:0" json:"order"`
	Generated   bool            `gorm:"default:false" json:"generated"` // 是否Agent生成
}

func (QuizQuestion) TableName() string {
	return "quiz_questions"
}
