package apierror

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrorResponse abstracts all API error responses to the user.
//
// This interface does not implement `error`, since its only purpose
// is to be used for API responses and not for logging circumstances.
//
// In general, the whole ErrorResponse can be sent for serialization.
type ErrorResponse interface {
	// Code is the HTTP status code to be returned.
	Code() int
}

type APIError struct {
	Message string `json:"error"`
	Status  int    `json:"-"`
}

func (a *APIError) Code() int {
	return a.Status
}

type StructuredError struct {
	Message string              `json:"error"`
	Errors  map[string][]string `json:"errors"`
	Status  int                 `json:"-"`
}

func (s *StructuredError) Code() int {
	return s.Status
}

func (s *StructuredError) Add(field, problem string) {
	s.Errors[field] = append(s.Errors[field], problem)
}

var (
	MalformedBodyError  = NewSimple(400, "Corpo da requisição inválido")
	InternalServerError = NewSimple(500, "Erro interno do servidor")

	NotFoundError = NewSimple(404, "Setor não encontrado")

	/*
	 * Admin gate
	 */
	MasterPasswordError  = NewSimple(403, "Senha mestra inválida")
	TooManyAttemptsError = NewSimple(429, "Muitas tentativas. Tente novamente em instantes.")

	/*
	 * Setor payloads
	 */
	MissingNomeSiglaError      = NewSimple(400, "Informe nome e sigla")
	InvalidEmailError          = NewSimple(400, "E-mail inválido")
	MissingRamalError          = NewSimple(400, "Número do ramal é obrigatório")
	MissingFavoriteFieldsError = NewSimple(400, "Campos 'numero' e 'favorite' são obrigatórios")
	ImportBodyError            = NewSimple(400, "O corpo deve ser uma lista de setores")
	MissingCSVBodyError        = NewSimple(400, "Corpo CSV ausente")
	CSVTooShortError           = NewSimple(400, "O CSV deve conter cabeçalho e ao menos uma linha")
	MissingWhatsappError       = NewSimple(404, "Setor sem WhatsApp ou celular cadastrado")
	ChangeLogDisabledError     = NewSimple(503, "Histórico de alterações indisponível")
)

func FromValidationError(err error) *StructuredError {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return nil
	}

	problems := map[string][]string{}
	for _, fe := range ve {
		field := strings.ToLower(fe.Field())

		switch fe.Tag() {
		case "required", "notblank":
			problems[field] = append(problems[field], "Campo obrigatório")
		case "min":
			problems[field] = append(problems[field], "Valor muito curto, mínimo: "+fe.Param())
		case "max":
			problems[field] = append(problems[field], "Valor muito longo, máximo: "+fe.Param())
		case "email", "emailorblank":
			problems[field] = append(problems[field], "Informe um e-mail válido")
		case "oneof":
			problems[field] = append(problems[field], "Valor deve ser um de: "+fe.Param())

		default:
			problems[field] = append(problems[field], "Valor inválido")
		}
	}

	return &StructuredError{
		Message: "Dados inválidos",
		Errors:  problems,
		Status:  http.StatusBadRequest,
	}
}

func NewSimple(status int, msg string, args ...any) *APIError {
	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}
	return &APIError{Status: status, Message: msg}
}
