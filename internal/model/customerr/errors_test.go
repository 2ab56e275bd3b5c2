package customerr

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func Test_ValidationError_ShouldListEveryField(t *testing.T) {
	verr := &ValidationError{}
	assert.NoError(t, verr.OrNil())

	verr.Add("amount", "must be greater than zero")
	verr.Add("description", "must not be empty")

	err := verr.OrNil()
	assert.Error(t, err)
	assert.True(t, verr.Has("amount"))
	assert.False(t, verr.Has("date"))
	assert.Equal(t,
		"validation failed: amount: must be greater than zero; description: must not be empty",
		err.Error())
}

func Test_Helpers_ShouldSeeThroughWrapping(t *testing.T) {
	cause := errors.New("disk full")

	assert.True(t, IsPersistenceError(errors.Wrap(&PersistenceError{Op: "save", Err: cause}, "add expense")))
	assert.True(t, IsNotFoundError(errors.Wrap(&NotFoundError{ID: "42"}, "delete")))
	assert.True(t, IsCorruptStateError(&CorruptStateError{Err: cause}))
	assert.True(t, IsValidationError(&ValidationError{}))
	assert.False(t, IsNotFoundError(cause))

	perr := &PersistenceError{Op: "save", Err: cause}
	assert.ErrorIs(t, perr, cause)
	assert.Equal(t, "persistence save: disk full", perr.Error())
}
