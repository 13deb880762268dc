package validators

import "go.mongodb.org/mongo-driver/bson"

var money = bson.M{"bsonType": []string{"decimal", "double", "int", "long"}}

var RequestValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"customer_name", "status", "created_at"},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{"bsonType": "string"},

			"customer_name": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},

			"passengers": bson.M{
				"bsonType": []string{"array", "null"},
				"maxItems": 9,
				"items": bson.M{
					"bsonType": "object",
					"required": []string{"name"},
					"properties": bson.M{
						"name":          bson.M{"bsonType": "string"},
						"ticket_number": bson.M{"bsonType": "string"},
					},
				},
			},

			"status": bson.M{
				"bsonType": "string",
				"enum":     []string{"draft", "pending", "confirmed", "cancelled"},
			},

			"airlines_price":           money,
			"service_fee":              money,
			"visa_price":               money,
			"service_visa":             money,
			"commission_from_airlines": money,
			"lst_loan_fee":             money,
			"cash_paid":                money,
			"bank_transfer":            money,
			"hotel_price":              money,
			"total_ticket_price":       money,
			"tot_visa_fees":            money,
			"total_amount_due":         money,
			"total_customer_payment":   money,
			"lst_profit":               money,

			"created_at": bson.M{"bsonType": "date"},
			"updated_at": bson.M{"bsonType": "date"},
		},
	},
}
