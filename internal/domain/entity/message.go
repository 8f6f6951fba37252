package entity

import "time"

const MessageTypeText = "text"

type Message struct {
	ID       string    `json:"id" firestore:"-"`
	ChatID   string    `json:"chat_id" firestore:"chatId" validate:"required"`
	SenderID string    `json:"sender_id" firestore:"senderId" validate:"required"`
	Text     string    `json:"text" firestore:"text"`
	MediaURL string    `json:"media_url" firestore:"mediaUrl"`
	SentAt   time.Time `json:"sent_at" firestore:"sentAt" validate:"required"`
	Type     string    `json:"type" firestore:"type"`
	EditedAt time.Time `json:"edited_at,omitempty" firestore:"editedAt"`
}

func (m *Message) Fields() map[string]interface{} {
	fields := map[string]interface{}{
		"chatId":   m.ChatID,
		"senderId": m.SenderID,
		"text":     m.Text,
		"mediaUrl": m.MediaURL,
		"sentAt":   m.SentAt,
		"type":     m.Type,
	}
	if !m.EditedAt.IsZero() {
		fields["editedAt"] = m.EditedAt
	}
	return fields
}

// EditableUntil is the last instant at which the message may still be changed.
func (m *Message) EditableUntil(window time.Duration) time.Time {
	return m.SentAt.Add(window)
}
