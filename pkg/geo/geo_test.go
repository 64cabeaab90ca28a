package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

// 0.018 degrees of longitude on the equator is R * 0.018 * pi / 180
func TestDistanceMeters_EquatorFixture(t *testing.T) {
	center := Coordinate{Lat: 0, Lng: 0}
	point := Coordinate{Lat: 0, Lng: 0.018}

	assert.InDelta(t, 2001.5087, DistanceMeters(center, point), 1.0)
	assert.InDelta(t, EarthRadiusMeters*0.018*math.Pi/180, DistanceMeters(center, point), 1e-6)
}

func TestDistanceMeters_Properties(t *testing.T) {
	points := []Coordinate{
		{Lat: 0, Lng: 0},
		{Lat: 28.6139, Lng: 77.2090},
		{Lat: -33.8688, Lng: 151.2093},
		{Lat: 51.5074, Lng: -0.1278},
		{Lat: 90, Lng: 0},
		{Lat: -90, Lng: 180},
	}

	for _, a := range points {
		assert.Equal(t, 0.0, DistanceMeters(a, a), "distance to self for %v", a)
		for _, b := range points {
			ab := DistanceMeters(a, b)
			ba := DistanceMeters(b, a)
			assert.InDelta(t, ab, ba, 1e-6, "symmetry for %v %v", a, b)
			assert.GreaterOrEqual(t, ab, 0.0)
		}
	}
}

func TestDistanceMeters_Antipodal(t *testing.T) {
	d := DistanceMeters(Coordinate{Lat: 0, Lng: 0}, Coordinate{Lat: 0, Lng: 180})
	assert.InDelta(t, math.Pi*EarthRadiusMeters, d, 1.0)
	assert.False(t, math.IsNaN(d))
}

func TestWithin(t *testing.T) {
	center := Coordinate{Lat: 0, Lng: 0}

	assert.True(t, Within(Coordinate{Lat: 0, Lng: 0.009}, center, 2000))
	assert.False(t, Within(Coordinate{Lat: 0, Lng: 0.0225}, center, 2000))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		coord Coordinate
		err   error
	}{
		{name: "origin", coord: Coordinate{}, err: nil},
		{name: "corners", coord: Coordinate{Lat: -90, Lng: 180}, err: nil},
		{name: "NaN latitude", coord: Coordinate{Lat: math.NaN(), Lng: 0}, err: ErrNotFinite},
		{name: "infinite longitude", coord: Coordinate{Lat: 0, Lng: math.Inf(1)}, err: ErrNotFinite},
		{name: "latitude too high", coord: Coordinate{Lat: 90.5, Lng: 0}, err: ErrLatOutOfRange},
		{name: "longitude too low", coord: Coordinate{Lat: 0, Lng: -181}, err: ErrLngOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.err, tt.coord.Validate())
		})
	}
}
