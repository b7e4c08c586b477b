package models

// Location represents a geographical location with latitude and longitude coordinates.
type Location struct {
	Lat float64 `bson:"lat" json:"lat"`
	Lon float64 `bson:"lon" json:"lon"`
}

// InRange reports whether the coordinates are within valid WGS84 ranges.
// Boundary values (lat ±90, lon ±180) are accepted.
func (l Location) InRange() bool {
	return l.Lat >= -90 && l.Lat <= 90 && l.Lon >= -180 && l.Lon <= 180
}
