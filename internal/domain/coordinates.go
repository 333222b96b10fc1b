package domain

import "math"

const earthRadiusMeters = 6371008.8

// Immutable geographic coordinates (longitude, latitude).
type Coordinates struct {
	Lon float64
	Lat float64
}

// Return coordinates as [lon, lat] for external API compatibility.
func (c Coordinates) CoordsToList() []float64 { return []float64{c.Lon, c.Lat} }

// GreatCircleMeters returns the haversine distance between c and o.
func (c Coordinates) GreatCircleMeters(o Coordinates) float64 {
	rad := math.Pi / 180
	dLat := (o.Lat - c.Lat) * rad
	dLon := (o.Lon - c.Lon) * rad
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(c.Lat*rad)*math.Cos(o.Lat*rad)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusMeters * math.Asin(math.Sqrt(a))
}
