package entity

import "time"

type ChatType string

const (
	ChatTypeAll     ChatType = "all"
	ChatTypeGroup   ChatType = "group"
	ChatTypePrivate ChatType = "private"
)

const (
	GroupChatCollection   = "groupChat"
	PrivateChatCollection = "privateChat"

	DefaultGroupName = "Your Group"
)

// ParseChatType maps a raw value onto a ChatType, defaulting to ChatTypeAll.
func ParseChatType(s string) ChatType {
	switch ChatType(s) {
	case ChatTypeGroup:
		return ChatTypeGroup
	case ChatTypePrivate:
		return ChatTypePrivate
	default:
		return ChatTypeAll
	}
}

// Collection returns the document collection holding chats of this type.
func (t ChatType) Collection() string {
	switch t {
	case ChatTypeGroup:
		return GroupChatCollection
	case ChatTypePrivate:
		return PrivateChatCollection
	default:
		return ""
	}
}

// Chat is either a group chat (CreatedBy/Members) or a private chat (UserID1/UserID2).
type Chat struct {
	ID            string    `json:"id" firestore:"-"`
	Name          string    `json:"name" firestore:"name"`
	Type          ChatType  `json:"type" firestore:"type"`
	LastMessage   string    `json:"last_message" firestore:"lastMessage"`
	LastMessageAt time.Time `json:"last_message_at" firestore:"lastMessageAt" validate:"required"`
	CreatedAt     time.Time `json:"created_at,omitempty" firestore:"createdAt"`

	CreatedBy string   `json:"created_by,omitempty" firestore:"createdBy"`
	Members   []string `json:"members,omitempty" firestore:"members"`

	UserID1 string `json:"user_id1,omitempty" firestore:"userId1"`
	UserID2 string `json:"user_id2,omitempty" firestore:"userId2"`
}

func (c *Chat) Fields() map[string]interface{} {
	fields := map[string]interface{}{
		"name":          c.Name,
		"type":          string(c.Type),
		"lastMessage":   c.LastMessage,
		"lastMessageAt": c.LastMessageAt,
		"createdAt":     c.CreatedAt,
	}

	switch c.Type {
	case ChatTypeGroup:
		members := make([]interface{}, 0, len(c.Members))
		for _, m := range c.Members {
			members = append(members, m)
		}
		fields["createdBy"] = c.CreatedBy
		fields["members"] = members
	case ChatTypePrivate:
		fields["userId1"] = c.UserID1
		fields["userId2"] = c.UserID2
	}

	return fields
}

// MessagesCollection returns the path of this chat's messages sub-collection.
func (c *Chat) MessagesCollection() string {
	return c.Type.Collection() + "/" + c.ID + "/messages"
}

// HasMember reports whether userID participates in the chat.
func (c *Chat) HasMember(userID string) bool {
	if c.Type == ChatTypePrivate {
		return c.UserID1 == userID || c.UserID2 == userID
	}
	if c.CreatedBy == userID {
		return true
	}
	for _, m := range c.Members {
		if m == userID {
			return true
		}
	}
	return false
}
