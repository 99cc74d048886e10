package validators

import "go.mongodb.org/mongo-driver/bson"

var VehicleValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"brand",
			"model",
			"price_per_day",
			"vehicle_type",
			"doors",
			"passengers",
			"transmission_type",
			"fuel_type",
			"plate_numbers",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"brand": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 50,
			},

			"model": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 50,
			},

			"image": bson.M{
				"bsonType": "string",
			},

			"price_per_day": bson.M{
				"bsonType": []string{"double", "int", "long", "decimal"},
				"minimum":  0,
			},

			"vehicle_type": bson.M{
				"bsonType": "string",
				"enum": []string{
					"sedan",
					"suv",
					"hatchback",
					"station vagon",
					"mpv",
				},
			},

			"doors": bson.M{
				"bsonType": "int",
				"minimum":  2,
				"maximum":  5,
			},

			"passengers": bson.M{
				"bsonType": "int",
				"minimum":  2,
				"maximum":  12,
			},

			"transmission_type": bson.M{
				"bsonType": "string",
				"enum": []string{
					"automatic",
					"manual",
				},
			},

			"fuel_type": bson.M{
				"bsonType": "string",
				"enum": []string{
					"gasoline",
					"diesel",
					"electric",
					"hybrid",
				},
			},

			"plate_numbers": bson.M{
				"bsonType": "array",
				"minItems": 1,
				"items": bson.M{
					"bsonType":  "string",
					"minLength": 2,
					"maxLength": 12,
				},
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
