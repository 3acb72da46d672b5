package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddress_Validate(t *testing.T) {
	tests := []struct {
		in    Address
		valid bool
	}{
		{"", false},
		{"    ", false},
		{"abcd", false},
		{" abcd ", false},
		{"abcde", true},
		{"Zürich", true},
		{"123 Main St, Springfield, IL", true},
	}
	for _, tt := range tests {
		err := tt.in.Validate()
		if tt.valid {
			assert.NoError(t, err, "%q", tt.in)
		} else {
			assert.ErrorIs(t, err, ErrInvalidInput, "%q", tt.in)
		}
	}
}

func TestCoordinates_Validate(t *testing.T) {
	valid := []Coordinates{{0, 0}, {90, 180}, {-90, -180}, {39.78, -89.65}}
	for _, c := range valid {
		assert.NoError(t, c.Validate(), c.String())
	}
	invalid := []Coordinates{{90.0001, 0}, {0, -180.5}, {math.NaN(), 0}, {0, math.Inf(1)}}
	for _, c := range invalid {
		assert.ErrorIs(t, c.Validate(), ErrInvalidInput)
	}
}

func TestCoordinates_Key(t *testing.T) {
	assert.Equal(t, "39.780000,-89.650000", Coordinates{Lat: 39.78, Lon: -89.65}.Key())
	assert.Equal(t,
		Coordinates{Lat: 39.7800001, Lon: -89.65}.Key(),
		Coordinates{Lat: 39.78, Lon: -89.6500004}.Key(),
		"sub-precision differences share a key")
}

func TestInput_Variants(t *testing.T) {
	kinds := func(in Input) string {
		switch in.(type) {
		case Address:
			return "address"
		case Coordinates:
			return "coordinates"
		default:
			return "other"
		}
	}
	assert.Equal(t, "address", kinds(Address("somewhere")))
	assert.Equal(t, "coordinates", kinds(Coordinates{}))
}
