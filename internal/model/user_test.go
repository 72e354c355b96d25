package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserFields_Columns(t *testing.T) {
	fields := UserFields{Name: Set("Ana"), Age: Set(int64(30))}

	assert.False(t, fields.IsEmpty())
	assert.Equal(t, map[string]any{"name": "Ana", "age": int64(30)}, fields.Columns())
}

func TestUserFields_NullIsProvided(t *testing.T) {
	fields := UserFields{Email: Null()}

	assert.False(t, fields.IsEmpty())
	assert.Equal(t, map[string]any{"email": nil}, fields.Columns())
}

func TestUserFields_Empty(t *testing.T) {
	var fields UserFields

	assert.True(t, fields.IsEmpty())
	assert.Empty(t, fields.Columns())
}
