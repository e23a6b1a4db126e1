package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type sample struct {
	Email  string `validate:"required,email"`
	Status string `validate:"required"`
}

func TestStruct_Valid(t *testing.T) {
	assert.NoError(t, Struct(sample{Email: "a@x.com", Status: "disposable"}))
}

func TestStruct_ReportsEveryFailedField(t *testing.T) {
	err := Struct(sample{Email: "nope"})
	assert.ErrorContains(t, err, "field 'sample.Email' failed 'email'")
	assert.ErrorContains(t, err, "field 'sample.Status' failed 'required'")
}
