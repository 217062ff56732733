package dispatch

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type point struct{ x, y int64 }

func (p point) ToWireFormat() Mapping {
	return Mapping{"x": Int(p.x), "y": Int(p.y)}
}

func TestEncode_WireValues(t *testing.T) {
	at := time.Date(2025, 3, 4, 5, 6, 7, 0, time.FixedZone("x", 3600))
	body, err := Encode(OK(Mapping{
		"name":    String("n"),
		"ok":      Bool(true),
		"none":    Null(),
		"when":    Time(&at),
		"never":   Time(nil),
		"points":  Entities([]point{{1, 2}, {3, 4}}),
		"nested":  Sequence{Int(1), Mapping{"f": Float(1.5)}},
		"missing": Entity(nil),
	}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true,"data":{
		"name":"n","ok":true,"none":null,"when":"2025-03-04T04:06:07Z","never":null,
		"points":[{"x":1,"y":2},{"x":3,"y":4}],
		"nested":[1,{"f":1.5}],
		"missing":null
	}}`, string(body))
}

func TestEncode_Failure(t *testing.T) {
	body, err := Encode(Fail(401, CodeInvalidKey, "nope"))
	require.NoError(t, err)
	var got map[string]any
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, false, got["success"])
	assert.NotContains(t, got, "data")
	assert.Equal(t, map[string]any{"code": float64(1), "message": "nope"}, got["error"])
}
