package geo

import (
	"go.mongodb.org/mongo-driver/v2/bson"
)

// EarthRadiusMiles converts a distance in miles into radians for
// $centerSphere queries.
const EarthRadiusMiles = 3963.0

// RadiusFromMiles returns the angular radius for a distance in miles.
func RadiusFromMiles(distance float64) float64 {
	return distance / EarthRadiusMiles
}

// WithinSphere builds a $geoWithin filter on field around (longitude,
// latitude) with an angular radius.
func WithinSphere(field string, longitude, latitude, radius float64) bson.M {
	return bson.M{
		field: bson.M{
			"$geoWithin": bson.M{
				"$centerSphere": bson.A{bson.A{longitude, latitude}, radius},
			},
		},
	}
}
