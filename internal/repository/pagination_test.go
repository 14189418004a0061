package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageRequest(t *testing.T) {
	t.Run("Should create PageRequest with defaults", func(t *testing.T) {
		pageReq := NewPageRequest(0, "")
		assert.Equal(t, DefaultPageSize, pageReq.EffectiveLimit())
		assert.False(t, pageReq.HasCursor())
	})

	t.Run("Should enforce max page size", func(t *testing.T) {
		assert.Equal(t, DefaultPageSize, NewPageRequest(999, "").EffectiveLimit())
		assert.Equal(t, DefaultPageSize, PageRequest{Limit: -1}.EffectiveLimit())
	})

	t.Run("Should allow valid limits", func(t *testing.T) {
		pageReq := NewPageRequest(50, "abc")
		assert.Equal(t, 50, pageReq.EffectiveLimit())
		assert.True(t, pageReq.HasCursor())
	})

	t.Run("Should report more pages only with a cursor", func(t *testing.T) {
		assert.False(t, Page[string]{Items: []string{"a"}}.HasMore())
		assert.True(t, Page[string]{NextCursor: "x"}.HasMore())
	})
}
