package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateKey(t *testing.T) {
	t.Run("Format", func(t *testing.T) {
		assert.Equal(t, "reports:42", GenerateKey(KindReport, "42"))
		assert.Equal(t, "reportComments:42", GenerateKey(KindReportComments, "42"))
		assert.Equal(t, "currentuser:u-7", GenerateKey(KindCurrentUser, "u-7"))
	})

	t.Run("Deterministic", func(t *testing.T) {
		// Identical inputs must collide so writes overwrite the same
		// logical entry.
		assert.Equal(t, GenerateKey(KindReport, "abc"), GenerateKey(KindReport, "abc"))
	})

	t.Run("KindsDoNotCollide", func(t *testing.T) {
		assert.NotEqual(t, GenerateKey(KindReport, "1"), GenerateKey(KindReportComments, "1"))
	})
}
