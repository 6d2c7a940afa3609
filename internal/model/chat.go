package model

import (
	"time"
)

// ChatMessage 学习问答的聊天记录，每次提问固定写入一条user和一条assistant
type ChatMessage struct {
	UUIDBase
	UserID     uint      `gorm:"index" json:"userId"`
	SessionID  string    `gorm:"size:50;index" json:"sessionId"`
	ModuleID   *uint     `gorm:"index" json:"moduleId"` // 关联模块，站外提问为 nil
	Role       string    `gorm:"type:enum('user','assistant');not null" json:"role"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	Confidence float64   `gorm:"default:0" json:"confidence"`     // assistant应答的置信度
	Section    string    `gorm:"size:255" json:"section"`         // Agent引用的内容章节
	Fallback   bool      `gorm:"default:false" json:"fallback"`   // 是否为兜底应答
	CreatedAt  time.Time `gorm:"index" json:"createdAt"`
}

func (ChatMessage) TableName() string {
	return "chat_messages"
}
