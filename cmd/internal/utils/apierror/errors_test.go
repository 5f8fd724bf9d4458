package apierror

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIErrorSerializesAsErrorField(t *testing.T) {
	body, err := json.Marshal(NotFoundError)
	require.NoError(t, err)
	assert.JSONEq(t, `{"error":"Setor não encontrado"}`, string(body))
	assert.Equal(t, 404, NotFoundError.Code())
}

func TestNewSimpleFormats(t *testing.T) {
	e := NewSimple(400, "Parâmetro '%s' inválido", "limit")
	assert.Equal(t, 400, e.Code())
	assert.Equal(t, "Parâmetro 'limit' inválido", e.Message)
}

func TestFromValidationError(t *testing.T) {
	type req struct {
		Nome  string `validate:"required"`
		Email string `validate:"omitempty,email"`
	}

	err := validator.New().Struct(&req{Email: "nope"})
	serr := FromValidationError(err)
	require.NotNil(t, serr)

	assert.Equal(t, 400, serr.Code())
	assert.Equal(t, []string{"Campo obrigatório"}, serr.Errors["nome"])
	assert.Equal(t, []string{"Informe um e-mail válido"}, serr.Errors["email"])
}

func TestFromValidationErrorIgnoresOtherErrors(t *testing.T) {
	assert.Nil(t, FromValidationError(errors.New("boom")))
}
