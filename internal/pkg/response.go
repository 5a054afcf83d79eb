package pkg

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/simp-lee/partsweb/internal/domain"
)

// InternalErrorMessage is sent for errors that carry no user-facing message.
const InternalErrorMessage = "Erro interno do servidor."

// ErrorBody is the JSON body of every API error except validation failures.
type ErrorBody struct {
	Message string `json:"message"`
}

// ValidationErrorBody is the JSON body of a 400 validation failure, keyed by
// JSON field name.
type ValidationErrorBody struct {
	Errors map[string][]string `json:"errors"`
}

// Error sends a JSON error response. If err is a *domain.AppError, its code is
// mapped to the appropriate HTTP status and its message is sent; otherwise 500
// with a generic message.
func Error(c *gin.Context, err error) {
	status := domain.HTTPStatusCode(err)

	msg := InternalErrorMessage
	var appErr *domain.AppError
	if errors.As(err, &appErr) && status != http.StatusInternalServerError {
		msg = appErr.Message
	}

	c.JSON(status, ErrorBody{Message: msg})
}

// ValidationError sends a 400 JSON response with per-field validation messages.
func ValidationError(c *gin.Context, err error) {
	validationErrorWithType(c, err, nil)
}

// BindAndValidate binds the JSON request body to obj and validates it.
// On failure it automatically sends a ValidationError response and returns false.
// Because obj is available, JSON struct tags are used for field names when possible.
// Usage in handlers:
//
//	if !pkg.BindAndValidate(c, &req) { return }
func BindAndValidate(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		validationErrorWithType(c, err, obj)
		return false
	}
	return true
}

// validationErrorWithType sends a 400 validation error response.
// When obj is non-nil, it reflects on the struct to prefer JSON tag names.
func validationErrorWithType(c *gin.Context, err error, obj any) {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		c.JSON(http.StatusBadRequest, ErrorBody{Message: "Corpo da requisição inválido."})
		return
	}

	jsonTags := buildJSONTagMap(obj)

	fieldErrors := make(map[string][]string, len(ve))
	for _, fe := range ve {
		name, ok := jsonTags[fe.StructField()]
		if !ok {
			name = strings.ToLower(fe.StructField())
		}
		msg := fe.Error()
		if translator != nil {
			msg = fe.Translate(translator)
		}
		fieldErrors[name] = append(fieldErrors[name], msg)
	}

	c.JSON(http.StatusBadRequest, ValidationErrorBody{Errors: fieldErrors})
}

// buildJSONTagMap returns a map from struct field name to its JSON tag name.
// If obj is nil or not a struct (pointer), it returns an empty map.
func buildJSONTagMap(obj any) map[string]string {
	if obj == nil {
		return nil
	}
	t := reflect.TypeOf(obj)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil
	}
	m := make(map[string]string, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if name := parseJSONTagName(f.Tag.Get("json")); name != "" {
			m[f.Name] = name
		}
	}
	return m
}

// parseJSONTagName extracts the field name from a JSON struct tag value.
func parseJSONTagName(tag string) string {
	if tag == "" || tag == "-" {
		return ""
	}
	name, _, _ := strings.Cut(tag, ",")
	if name == "" || name == "-" {
		return ""
	}
	return name
}
