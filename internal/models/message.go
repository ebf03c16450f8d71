package models

import "time"

type MessageStatus string

const (
	MessageUnread  MessageStatus = "unread"
	MessageRead    MessageStatus = "read"
	MessageReplied MessageStatus = "replied"
)

func (s MessageStatus) Valid() bool {
	switch s {
	case MessageUnread, MessageRead, MessageReplied:
		return true
	}
	return false
}

// MessageData is a contact-form submission from the public site.
type MessageData struct {
	Name      string        `gorm:"size:150;not null" json:"name"`
	Email     string        `gorm:"size:150;not null;index" json:"email"`
	Phone     string        `gorm:"size:40" json:"phone"`
	Subject   string        `gorm:"size:255" json:"subject"`
	Body      string        `gorm:"column:message;type:text;not null" json:"message"`
	Status    MessageStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	Reply     string        `gorm:"type:text" json:"reply"`
	RepliedAt *time.Time    `json:"replied_at"`
}

type Message struct {
	ID uint `gorm:"primaryKey" json:"id"`
	MessageData
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
