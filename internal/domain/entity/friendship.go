package entity

import "time"

// FriendshipLink records that UserID1 added UserID2. The direction is kept as
// written; the document id is the unordered pair key so only one link per pair exists.
type FriendshipLink struct {
	ID        string    `json:"id" firestore:"-"`
	UserID1   string    `json:"user_id1" firestore:"userId1" validate:"required"`
	UserID2   string    `json:"user_id2" firestore:"userId2" validate:"required"`
	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
}

func (f *FriendshipLink) Fields() map[string]interface{} {
	return map[string]interface{}{
		"userId1":   f.UserID1,
		"userId2":   f.UserID2,
		"createdAt": f.CreatedAt,
	}
}

// Other returns the participant that is not userID.
func (f *FriendshipLink) Other(userID string) string {
	if f.UserID1 == userID {
		return f.UserID2
	}
	return f.UserID1
}

// FriendshipKey returns the canonical id for the unordered pair (a, b).
func FriendshipKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + "_" + b
}
