package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{MissingTenant(), http.StatusBadRequest},
		{Validation("nome", "nome é obrigatório"), http.StatusBadRequest},
		{WeakPassword("senha"), http.StatusBadRequest},
		{InvalidCredentials(), http.StatusUnauthorized},
		{NotFound("documento"), http.StatusNotFound},
		{DuplicateField("email"), http.StatusConflict},
		{Storage(errors.New("boom")), http.StatusInternalServerError},
		{errors.New("plain"), http.StatusInternalServerError},
		{fmt.Errorf("wrapped: %w", NotFound("x")), http.StatusNotFound},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Status(tt.err), tt.err.Error())
	}
}

func TestIsFollowsWrapping(t *testing.T) {
	err := fmt.Errorf("create users: %w", DuplicateField("email"))
	assert.True(t, Is(err, KindDuplicateField))
	assert.False(t, Is(err, KindNotFound))
	assert.Equal(t, "email", From(err).Field)
}

func TestStorageHidesCause(t *testing.T) {
	cause := errors.New("connection refused 10.0.0.3:27017")
	err := Storage(cause)
	assert.ErrorIs(t, err, cause)
	assert.NotContains(t, err.Message, "10.0.0.3")
}

func TestFromValidationError(t *testing.T) {
	v := validator.New()
	_ = v.RegisterValidation("strongpwd", func(fl validator.FieldLevel) bool { return false })

	type req struct {
		Login string `validate:"required"`
		Senha string `validate:"strongpwd"`
	}

	err := FromValidationError(v.Struct(req{}))
	assert.Equal(t, KindValidation, err.Kind)
	assert.Equal(t, "login", err.Field)

	err = FromValidationError(v.Struct(req{Login: "a@x.com", Senha: "abc"}))
	assert.Equal(t, KindWeakPassword, err.Kind)
	assert.Equal(t, "senha", err.Field)

	assert.Equal(t, KindValidation, FromValidationError(errors.New("other")).Kind)
}
