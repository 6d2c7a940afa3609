package repository

import (
	"hr_training_backend/internal/model"

	"gorm.io/gorm"
)

type ChatRepository struct {
	DB *gorm.DB
}

func NewChatRepository(db *gorm.DB) *ChatRepository {
	return &ChatRepository{DB: db}
}

func (r *ChatRepository) Append(msg *model.ChatMessage) error {
	return r.DB.Create(msg).Error
}

func (r *ChatRepository) ListBySession(userID uint, sessionID string) ([]model.ChatMessage, error) {
	var msgs []model.ChatMessage
	err := r.DB.Where("user_id = ? AND session_id = ?", userID, sessionID).
		Order("created_at ASC").
		Find(&msgs).Error
	return msgs, err
}

// ListSessions 返回用户的会话ID及每个会话的首条提问，按时间倒序
func (r *ChatRepository) ListSessions(userID uint, limit int) ([]model.ChatMessage, error) {
	var msgs []model.ChatMessage
	err := r.DB.Raw(`
		SELECT m.* FROM chat_messages m
		INNER JOIN (
			SELECT session_id, MIN(created_at) AS first_at
			FROM chat_messages
			WHERE user_id = ? AND role = 'user' AND deleted_at IS NULL
			GROUP BY session_id
		) s ON m.session_id = s.session_id AND m.created_at = s.first_at
		WHERE m.user_id = ? AND m.role = 'user' AND m.deleted_at IS NULL
		ORDER BY s.first_at DESC
		LIMIT ?`, userID, userID, limit).
		Scan(&msgs).Error
	return msgs, err
}

func (r *ChatRepository) DeleteSession(userID uint, sessionID string) error {
	return r.DB.Where("user_id = ? AND session_id = ?", userID, sessionID).
		Delete(&model.ChatMessage{}).Error
}
