package entity

import (
	"strings"
	"time"
)

const (
	StatusOnline  = "online"
	StatusOffline = "offline"

	DefaultProfilePic = "profile.jpg"
)

type User struct {
	// ID is the identity provider uid; DocID is the users collection document id.
	ID    string `json:"id" firestore:"uid" validate:"required"`
	DocID string `json:"doc_id" firestore:"-"`

	Username      string    `json:"username" firestore:"username"`
	Email         string    `json:"email" firestore:"email" validate:"required"`
	Fullname      string    `json:"fullname" firestore:"fullname"`
	FullnameLower string    `json:"-" firestore:"fullname_lower"`
	Status        string    `json:"status" firestore:"status"`
	LastSeen      time.Time `json:"last_seen" firestore:"lastSeen"`
	ProfilePic    string    `json:"profile_pic" firestore:"profilePic"`
	Provider      string    `json:"provider,omitempty" firestore:"provider"`
	CreatedAt     time.Time `json:"created_at" firestore:"createdAt"`
}

// Fields returns the document representation written to the users collection.
func (u *User) Fields() map[string]interface{} {
	return map[string]interface{}{
		"uid":            u.ID,
		"username":       u.Username,
		"email":          u.Email,
		"fullname":       u.Fullname,
		"fullname_lower": strings.ToLower(u.Fullname),
		"status":         u.Status,
		"lastSeen":       u.LastSeen,
		"profilePic":     u.ProfilePic,
		"provider":       u.Provider,
		"createdAt":      u.CreatedAt,
	}
}

// LastActive formats the user's lastSeen relative to now.
func (u *User) LastActive(now time.Time) string {
	if u == nil {
		return LastActiveNA
	}
	return FormatLastActive(u.LastSeen, now)
}

func (u *User) IsActiveNow(now time.Time) bool {
	return u.LastActive(now) == LastActiveNow
}
