package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

// DeletedItem is an immutable snapshot of a hard-deleted record.
type DeletedItem struct {
	ID            string    `json:"id,omitempty" bson:"_id,omitempty"`
	OriginalID    string    `json:"original_id" bson:"original_id"`
	OriginalTable string    `json:"original_table" bson:"original_table"`
	ItemType      string    `json:"item_type" bson:"item_type"`
	ItemName      string    `json:"item_name" bson:"item_name"`
	ItemData      bson.M    `json:"item_data" bson:"item_data"`
	DeletedAt     time.Time `json:"deleted_at" bson:"deleted_at"`
}
