package model

import "time"

// WorkspaceLock is the advisory lock document that serializes the
// check-availability-then-insert sequence for one workspace. The unique
// _id makes acquisition a single insert; ExpiresAt lets a TTL index reap
// locks abandoned by a crashed holder.
type WorkspaceLock struct {
	ID        string    `bson:"_id" json:"id"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
