package model_test

import (
	"testing"
	"time"

	"github.com/diillson/mock-api-server/internal/domain/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouteDraft_Build(t *testing.T) {
	t.Run("applies defaults", func(t *testing.T) {
		route := model.RouteDraft{Method: " get ", Path: "/x", Status: 200}.Build()

		assert.Equal(t, "GET", route.Method)
		assert.Equal(t, 0, route.DelayMs)
		assert.True(t, route.Enabled)
		assert.NotNil(t, route.Headers)
		assert.True(t, route.Body.IsAbsent())
		assert.Empty(t, route.ID)
	})

	t.Run("explicit values win", func(t *testing.T) {
		delay := 250
		enabled := false
		route := model.RouteDraft{
			Method:  "POST",
			Path:    "/x",
			Status:  201,
			DelayMs: &delay,
			Enabled: &enabled,
			Body:    model.NullBody(),
		}.Build()

		assert.Equal(t, 250, route.DelayMs)
		assert.False(t, route.Enabled)
		assert.True(t, route.Body.IsNull())
		assert.Equal(t, 250*time.Millisecond, route.Delay())
	})
}

func TestRoutePatch_ApplyTo(t *testing.T) {
	created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	base := &model.MockRoute{
		ID:        "route-1",
		Method:    "GET",
		Path:      "/orders",
		Status:    200,
		Headers:   map[string]string{"X-A": "1"},
		Body:      model.MustBody([]int{1}),
		Enabled:   true,
		CreatedAt: created,
		UpdatedAt: created,
	}

	t.Run("only provided fields change", func(t *testing.T) {
		status := 503
		merged := model.RoutePatch{Status: &status}.ApplyTo(base)

		assert.Equal(t, 503, merged.Status)
		assert.Equal(t, base.Path, merged.Path)
		assert.Equal(t, base.Headers, merged.Headers)
		assert.True(t, base.Body.Equal(merged.Body))
		assert.Equal(t, "route-1", merged.ID)
		assert.Equal(t, created, merged.CreatedAt)
		assert.Equal(t, 200, base.Status, "original is untouched")
	})

	t.Run("body can become null", func(t *testing.T) {
		null := model.NullBody()
		merged := model.RoutePatch{Body: &null}.ApplyTo(base)
		assert.True(t, merged.Body.IsNull())
	})

	t.Run("headers are replaced, not merged", func(t *testing.T) {
		headers := map[string]string{"X-B": "2"}
		merged := model.RoutePatch{Headers: &headers}.ApplyTo(base)
		assert.Equal(t, map[string]string{"X-B": "2"}, merged.Headers)
	})

	t.Run("method is normalized", func(t *testing.T) {
		method := "delete"
		merged := model.RoutePatch{Method: &method}.ApplyTo(base)
		assert.Equal(t, "DELETE", merged.Method)
	})

	t.Run("empty patch", func(t *testing.T) {
		assert.True(t, model.RoutePatch{}.IsEmpty())
		enabled := false
		assert.False(t, model.RoutePatch{Enabled: &enabled}.IsEmpty())
	})
}

func TestMockRoute_Matching(t *testing.T) {
	r := &model.MockRoute{Method: "GET", Path: "/a", Enabled: true}

	assert.True(t, r.Matches("GET", "/a"))
	assert.False(t, r.Matches("POST", "/a"))
	assert.False(t, r.Matches("GET", "/a/"))
	assert.False(t, r.Matches("GET", "/A"))

	r.Enabled = false
	assert.False(t, r.Matches("GET", "/a"))
}

func TestMockRoute_CloneIsDeep(t *testing.T) {
	r := &model.MockRoute{Headers: map[string]string{"X-A": "1"}, Body: model.MustBody("x")}
	clone := r.Clone()
	clone.Headers["X-A"] = "changed"

	require.Equal(t, "1", r.Headers["X-A"])
	assert.Nil(t, (*model.MockRoute)(nil).Clone())
}
