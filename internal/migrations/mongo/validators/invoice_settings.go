package validators

import "go.mongodb.org/mongo-driver/bson"

var InvoiceSettingsValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"organization_id", "company_name"},
		"additionalProperties": true,

		"properties": bson.M{
			"_id":             bson.M{"bsonType": "string"},
			"organization_id": bson.M{"bsonType": "string", "minLength": 1},
			"company_name":    bson.M{"bsonType": "string", "minLength": 2, "maxLength": 120},
			"iban":            bson.M{"bsonType": "string", "maxLength": 34},
			"bic":             bson.M{"bsonType": "string", "maxLength": 11},
			"logo":            bson.M{"bsonType": []string{"binData", "null"}},
			"show_qr":         bson.M{"bsonType": "bool"},
			"updated_at":      bson.M{"bsonType": "date"},
		},
	},
}
