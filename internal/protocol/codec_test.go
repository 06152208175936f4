package protocol

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeIsFlatWithType(t *testing.T) {
	b, err := Encode(PlayerUpdate{
		ID:       "abc",
		Position: Vec3{X: 1, Y: 0.5, Z: -2},
		Rotation: Vec3{Y: 1.25},
		Score:    150,
	})
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))
	assert.Equal(t, "playerUpdate", m["type"])
	assert.Equal(t, "abc", m["id"])
	assert.Equal(t, float64(150), m["score"])
	assert.Equal(t, map[string]any{"x": 1.0, "y": 0.5, "z": -2.0}, m["position"])
}

func TestDecodeClientVariants(t *testing.T) {
	msg, err := DecodeClient([]byte(`{"type":"join","name":"A"}`))
	require.NoError(t, err)
	assert.Equal(t, Join{Name: "A"}, msg)

	msg, err = DecodeClient([]byte(`{"type":"update","position":{"x":5,"y":0.5,"z":5},"rotation":{"x":0,"y":1,"z":0},"score":50}`))
	require.NoError(t, err)
	assert.Equal(t, Update{Position: Vec3{5, 0.5, 5}, Rotation: Vec3{Y: 1}, Score: 50}, msg)

	msg, err = DecodeClient([]byte(`{"type":"shoot","position":{"x":1,"y":2,"z":3},"direction":{"x":0,"y":0,"z":1}}`))
	require.NoError(t, err)
	assert.Equal(t, Shoot{Position: Vec3{1, 2, 3}, Direction: Vec3{Z: 1}}, msg)
}

func TestDecodeServerVariants(t *testing.T) {
	in := []ServerMessage{
		Joined{ID: "a", Players: []Player{{ID: "a", Name: "A", Position: Vec3{Y: 0.5}}}},
		PlayerJoined{ID: "b", Name: "B"},
		PlayerUpdate{ID: "b", Position: Vec3{5, 0.5, 5}, Score: 50},
		PlayerShoot{ID: "b", Position: Vec3{1, 1, 1}, Direction: Vec3{X: 1}},
		PlayerLeft{ID: "b"},
	}
	for _, want := range in {
		b, err := Encode(want)
		require.NoError(t, err)
		got, err := DecodeServer(b)
		require.NoError(t, err, string(b))
		assert.Equal(t, want, got)
	}
}

func TestDecodeRejectsMalformed(t *testing.T) {
	cases := map[string]string{
		"empty":      ``,
		"whitespace": `   `,
		"not json":   `hello`,
		"array":      `[1,2]`,
		"null":       `null`,
		"no type":    `{"name":"A"}`,
		"type int":   `{"type":5}`,
		"bad field":  `{"type":"update","position":"north"}`,
		"truncated":  `{"type":"join","name":"A"`,
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeClient([]byte(payload))
			assert.True(t, errors.Is(err, ErrMalformed), "got %v", err)
		})
	}
}

func TestDecodeUnknownType(t *testing.T) {
	_, err := DecodeClient([]byte(`{"type":"teleport"}`))
	assert.ErrorIs(t, err, ErrUnknownType)

	// Server messages are not valid client input and vice versa.
	_, err = DecodeClient([]byte(`{"type":"playerLeft","id":"x"}`))
	assert.ErrorIs(t, err, ErrUnknownType)
	_, err = DecodeServer([]byte(`{"type":"join","name":"A"}`))
	assert.ErrorIs(t, err, ErrUnknownType)
}

func TestVec3Conversion(t *testing.T) {
	v := mgl64.Vec3{1, 2, 3}
	assert.Equal(t, Vec3{1, 2, 3}, FromVec(v))
	assert.Equal(t, v, FromVec(v).Vec())
}

func TestEncodeRejectsNil(t *testing.T) {
	_, err := Encode(nil)
	assert.Error(t, err)
}
