package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordHashing(t *testing.T) {
	var u User
	assert.ErrorIs(t, u.SetPassword("short"), ErrInvalidPassword)

	require.NoError(t, u.SetPassword("correct horse"))
	assert.NotEqual(t, "correct horse", u.Password)
	assert.True(t, u.ComparePassword("correct horse"))
	assert.False(t, u.ComparePassword("wrong horse"))
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "ada@example.com", NormalizeEmail("  Ada@Example.COM "))
}
