package names

import "time"

// Record is the persistent name record. Name is the semantic key; ID is the
// store-assigned identifier and is never used for lookups.
type Record struct {
	ID        string    `json:"id" bson:"_id,omitempty"`
	Name      string    `json:"name" bson:"name"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}
