package users

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisplayName(t *testing.T) {
	name := "Ada Lovelace"

	t.Run("prefers the full name", func(t *testing.T) {
		p := Profile{Email: "ada@example.com", FullName: &name}
		assert.Equal(t, "Ada Lovelace", p.DisplayName())
	})

	t.Run("falls back to the email local-part", func(t *testing.T) {
		p := Profile{Email: "ada@example.com"}
		assert.Equal(t, "ada", p.DisplayName())
	})

	t.Run("empty full name falls back too", func(t *testing.T) {
		empty := ""
		p := Profile{Email: "ada@example.com", FullName: &empty}
		assert.Equal(t, "ada", p.DisplayName())
	})

	t.Run("email without at-sign is used whole", func(t *testing.T) {
		p := Profile{Email: "service-account"}
		assert.Equal(t, "service-account", p.DisplayName())
	})
}
