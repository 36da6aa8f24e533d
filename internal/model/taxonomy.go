package model

import "time"

// Tag labels recipes for an owner. Tags are scoped to the owning user;
// two users may each have a tag of the same name. Deduplication within
// an owner happens by lookup-or-create at write time, not by a storage
// constraint.
type Tag struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Ingredient is a named ingredient scoped to an owner. It follows the
// same lifecycle rules as Tag but lives in a separate namespace.
type Ingredient struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
