package wire_test

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/diillson/mock-api-server/internal/adapter/wire"
	"github.com/diillson/mock-api-server/internal/domain/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeInput(t *testing.T, raw string) wire.RouteInput {
	t.Helper()
	var in wire.RouteInput
	require.NoError(t, json.Unmarshal([]byte(raw), &in))
	return in
}

func TestRouteInput_ToDraft(t *testing.T) {
	t.Run("full payload", func(t *testing.T) {
		in := decodeInput(t, `{
			"method": "post",
			"path": "/login",
			"status": 401,
			"headers": {"X-Reason": "bad-credentials"},
			"body": {"error": "unauthorized"},
			"delay_ms": 300,
			"enabled": false
		}`)

		draft, err := in.ToDraft()
		require.NoError(t, err)

		route := draft.Build()
		assert.Equal(t, "POST", route.Method)
		assert.Equal(t, "/login", route.Path)
		assert.Equal(t, 401, route.Status)
		assert.Equal(t, "bad-credentials", route.Headers["X-Reason"])
		assert.JSONEq(t, `{"error":"unauthorized"}`, string(route.Body.Bytes()))
		assert.Equal(t, 300, route.DelayMs)
		assert.False(t, route.Enabled)
	})

	t.Run("body key presence", func(t *testing.T) {
		draft, err := decodeInput(t, `{"method":"GET","path":"/a","status":204}`).ToDraft()
		require.NoError(t, err)
		assert.True(t, draft.Body.IsAbsent())

		draft, err = decodeInput(t, `{"method":"GET","path":"/a","status":200,"body":null}`).ToDraft()
		require.NoError(t, err)
		assert.True(t, draft.Body.IsNull())
	})

	t.Run("client supplied identity is ignored", func(t *testing.T) {
		draft, err := decodeInput(t, `{"id":"forged","created_at":"2020-01-01T00:00:00Z","method":"GET","path":"/a","status":200}`).ToDraft()
		require.NoError(t, err)
		assert.Empty(t, draft.Build().ID)
	})

	t.Run("non string header value", func(t *testing.T) {
		_, err := decodeInput(t, `{"method":"GET","path":"/a","status":200,"headers":{"X-Count":3}}`).ToDraft()

		var verr *model.ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, model.RuleHeaders, verr.Rule)
	})
}

func TestRouteInput_ToPatch(t *testing.T) {
	t.Run("only present fields are set", func(t *testing.T) {
		patch, err := decodeInput(t, `{"status":503}`).ToPatch()
		require.NoError(t, err)

		require.NotNil(t, patch.Status)
		assert.Equal(t, 503, *patch.Status)
		assert.Nil(t, patch.Method)
		assert.Nil(t, patch.Body)
		assert.Nil(t, patch.Headers)
	})

	t.Run("explicit null body", func(t *testing.T) {
		patch, err := decodeInput(t, `{"body":null}`).ToPatch()
		require.NoError(t, err)

		require.NotNil(t, patch.Body)
		assert.True(t, patch.Body.IsNull())
	})

	t.Run("empty object is an empty patch", func(t *testing.T) {
		patch, err := decodeInput(t, `{}`).ToPatch()
		require.NoError(t, err)
		assert.True(t, patch.IsEmpty())
	})
}

func TestRoute_JSON(t *testing.T) {
	stamp := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	route := &model.MockRoute{
		ID:        "r1",
		Method:    "GET",
		Path:      "/a",
		Status:    200,
		Headers:   map[string]string{},
		Enabled:   true,
		CreatedAt: stamp,
		UpdatedAt: stamp,
	}

	t.Run("absent body omits the key", func(t *testing.T) {
		data, err := json.Marshal(wire.FromModel(route))
		require.NoError(t, err)

		var fields map[string]interface{}
		require.NoError(t, json.Unmarshal(data, &fields))
		assert.NotContains(t, fields, "body")
		assert.Equal(t, "r1", fields["id"])
		assert.Equal(t, "2025-06-01T12:00:00Z", fields["created_at"])
	})

	t.Run("null body is serialized", func(t *testing.T) {
		withNull := route.Clone()
		withNull.Body = model.NullBody()

		data, err := json.Marshal(wire.FromModel(withNull))
		require.NoError(t, err)
		assert.Contains(t, string(data), `"body":null`)
	})

	t.Run("model conversion keeps every field", func(t *testing.T) {
		withBody := route.Clone()
		withBody.Body = model.MustBody([]string{"x"})
		withBody.Headers["X-A"] = "1"

		assert.Equal(t, withBody, wire.FromModel(withBody).ToModel())
	})
}

func TestDecodeSeed(t *testing.T) {
	t.Run("bare list", func(t *testing.T) {
		inputs, err := wire.DecodeSeed([]byte(`[{"method":"GET","path":"/a","status":200}]`))
		require.NoError(t, err)
		require.Len(t, inputs, 1)
		assert.Equal(t, "/a", *inputs[0].Path)
	})

	t.Run("wrapped object", func(t *testing.T) {
		inputs, err := wire.DecodeSeed([]byte(`{"routes":[{"path":"/a"},{"path":"/b"}]}`))
		require.NoError(t, err)
		assert.Len(t, inputs, 2)
	})

	t.Run("empty file", func(t *testing.T) {
		inputs, err := wire.DecodeSeed([]byte("  \n"))
		require.NoError(t, err)
		assert.Empty(t, inputs)
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := wire.DecodeSeed([]byte(`{"routes":`))
		assert.Error(t, err)
	})
}

func TestDecodeSnapshot(t *testing.T) {
	t.Run("current version", func(t *testing.T) {
		snap, err := wire.DecodeSnapshot([]byte(`{"version":1,"updatedAt":"2025-06-01T00:00:00Z","routes":[{"id":"a","method":"GET","path":"/a","status":200}]}`))
		require.NoError(t, err)
		require.Len(t, snap.Routes, 1)
		assert.True(t, snap.Routes[0].Body.IsAbsent())
	})

	t.Run("unknown version", func(t *testing.T) {
		_, err := wire.DecodeSnapshot([]byte(`{"version":99,"routes":[]}`))
		assert.Error(t, err)
	})

	t.Run("empty data", func(t *testing.T) {
		snap, err := wire.DecodeSnapshot(nil)
		require.NoError(t, err)
		assert.Empty(t, snap.Routes)
	})
}
