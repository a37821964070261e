package models

import "time"

// ItemRequest asks the community for an item nobody has listed yet.
type ItemRequest struct {
	ID          int64
	Description string
	RequestorID int64
	Created     time.Time
	Items       []RequestItem
}

// RequestItem is an item listed in answer to a request.
type RequestItem struct {
	ID      int64  `db:"id" json:"id"`
	Name    string `db:"name" json:"name"`
	OwnerID int64  `db:"owner_id" json:"ownerId"`
}
