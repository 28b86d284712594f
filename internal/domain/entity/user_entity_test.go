package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "ann@x.com", NormalizeEmail("  ANN@X.com \t"))
	assert.Equal(t, "", NormalizeEmail("   "))
}

func TestRoleValid(t *testing.T) {
	assert.True(t, RoleStudent.Valid())
	assert.True(t, RoleInstructor.Valid())
	assert.False(t, Role("student").Valid())
	assert.False(t, Role("").Valid())
}

func TestPublicOmitsHash(t *testing.T) {
	u := &User{ID: "1", Name: "Ann", Email: "ann@x.com", PasswordHash: "h", Role: RoleStudent}
	p := u.Public()
	assert.Equal(t, PublicUser{ID: "1", Name: "Ann", Email: "ann@x.com", Role: RoleStudent}, p)
}
