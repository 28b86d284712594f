package validation

import (
	"encoding/json"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
)

type registerPayload struct {
	Name     string `json:"name" validate:"required"`
	Password string `json:"password" validate:"required,pwd"`
	Role     string `json:"role" validate:"required,role"`
}

func newValidator() *validator.Validate {
	v := validator.New()
	Configure(v)
	return v
}

func TestToDetails_FieldErrors(t *testing.T) {
	err := newValidator().Struct(registerPayload{Password: "abc", Role: "Admin"})
	d := ToDetails(err)
	assert.Equal(t, "is required", d["name"])
	assert.Equal(t, "must be between 6 and 72 characters long", d["password"])
	assert.Equal(t, "must be one of: Student, Instructor", d["role"])
}

func TestToDetails_Valid(t *testing.T) {
	err := newValidator().Struct(registerPayload{Name: "Ann", Password: "secret1", Role: "Instructor"})
	assert.NoError(t, err)
	assert.Nil(t, ToDetails(err))
}

func TestToDetails_InvalidJSON(t *testing.T) {
	var p registerPayload
	err := json.Unmarshal([]byte(`{"name":`), &p)
	assert.Equal(t, map[string]string{"payload": "invalid json"}, ToDetails(err))
}
