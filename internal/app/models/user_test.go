package models

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationLogSetError(t *testing.T) {
	t.Run("short message kept", func(t *testing.T) {
		var n NotificationLog
		n.SetError("smtp: connection refused")
		require.NotNil(t, n.ErrorMessage)
		assert.Equal(t, "smtp: connection refused", *n.ErrorMessage)
	})

	t.Run("truncated to column size", func(t *testing.T) {
		var n NotificationLog
		n.SetError(strings.Repeat("x", 3000))
		require.NotNil(t, n.ErrorMessage)
		assert.Len(t, *n.ErrorMessage, maxNotificationErrorBytes)
	})

	t.Run("truncation keeps runes whole", func(t *testing.T) {
		var n NotificationLog
		// the two-byte rune straddles the byte limit
		n.SetError(strings.Repeat("a", maxNotificationErrorBytes-1) + "é" + "xyz")
		require.NotNil(t, n.ErrorMessage)
		assert.True(t, utf8.ValidString(*n.ErrorMessage))
		assert.Equal(t, strings.Repeat("a", maxNotificationErrorBytes-1), *n.ErrorMessage)
	})
}
