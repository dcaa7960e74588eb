package viewstate

import "time"

// ViewSession is a reading position for one stored document, persisted so
// a viewer can resume where it left off.
type ViewSession struct {
	Token     string    `bson:"token" json:"token"`
	Document  string    `bson:"document" json:"document"`
	Page      int       `bson:"page" json:"page"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
	ExpiresAt time.Time `bson:"expiresAt" json:"expiresAt"`
}
