package validators

import "go.mongodb.org/mongo-driver/bson"

var DeletedItemValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"original_id",
			"original_table",
			"item_type",
			"item_data",
			"deleted_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id":            bson.M{"bsonType": "string"},
			"original_id":    bson.M{"bsonType": "string", "minLength": 1},
			"original_table": bson.M{"bsonType": "string", "enum": []string{"bookings", "requests"}},
			"item_type":      bson.M{"bsonType": "string"},
			"item_name":      bson.M{"bsonType": "string"},
			"item_data":      bson.M{"bsonType": "object"},
			"deleted_at":     bson.M{"bsonType": "date"},
		},
	},
}
