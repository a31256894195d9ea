package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidRole(t *testing.T) {
	tests := []struct {
		name     string
		role     Role
		expected bool
	}{
		{"user role", RoleUser, true},
		{"garage owner role", RoleGarageOwner, true},
		{"invalid role", "admin", false},
		{"empty role", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsValidRole(tt.role))
		})
	}
}

func TestUser_IsGarageOwner(t *testing.T) {
	var none *User
	assert.False(t, none.IsGarageOwner())
	assert.False(t, (&User{Role: RoleUser}).IsGarageOwner())
	assert.True(t, (&User{Role: RoleGarageOwner}).IsGarageOwner())
}
