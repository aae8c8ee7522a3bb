package model

// Favorite is the per-user ordered set of favorited note ids.
type Favorite struct {
	ID     string   `bson:"_id" json:"id"`
	UserID string   `bson:"user_id" json:"user_id"`
	Notes  []string `bson:"notes" json:"notes"`
}
