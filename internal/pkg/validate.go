package pkg

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/pt_BR"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	pt_BR_translations "github.com/go-playground/validator/v10/translations/pt_BR"
)

// FirstModelYear is the earliest year accepted for a vehicle model.
const FirstModelYear = 1886

var (
	setupOnce  sync.Once
	setupErr   error
	translator ut.Translator
)

// SetupValidator registers the pt_BR messages, the "label" field names and
// the custom tags on gin's validator. "notblank" rejects strings made only of
// whitespace, which "required" lets through. It is safe to call more than once.
func SetupValidator() error {
	setupOnce.Do(func() {
		setupErr = setupValidator()
	})
	return setupErr
}

func setupValidator() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("gin validator engine is not go-playground/validator")
	}

	locale := pt_BR.New()
	uni := ut.New(locale, locale)
	trans, found := uni.GetTranslator(locale.Locale())
	if !found {
		return fmt.Errorf("translator %s not found", locale.Locale())
	}
	if err := pt_BR_translations.RegisterDefaultTranslations(v, trans); err != nil {
		return fmt.Errorf("register pt_BR translations: %w", err)
	}

	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		if label := field.Tag.Get("label"); label != "" {
			return label
		}
		return field.Name
	})

	if err := v.RegisterValidation("modelyear", validModelYear); err != nil {
		return fmt.Errorf("register modelyear: %w", err)
	}
	err := v.RegisterTranslation("modelyear", trans,
		func(t ut.Translator) error {
			return t.Add("modelyear", "{0} deve estar entre {1} e {2}", false)
		},
		func(t ut.Translator, fe validator.FieldError) string {
			msg, err := t.T("modelyear", fe.Field(), strconv.Itoa(FirstModelYear), strconv.Itoa(time.Now().Year()))
			if err != nil {
				return fe.Error()
			}
			return msg
		},
	)
	if err != nil {
		return fmt.Errorf("register modelyear translation: %w", err)
	}

	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		return fmt.Errorf("register notblank: %w", err)
	}
	err = v.RegisterTranslation("notblank", trans,
		func(t ut.Translator) error {
			return t.Add("notblank", "{0} é um campo obrigatório", false)
		},
		func(t ut.Translator, fe validator.FieldError) string {
			msg, err := t.T("notblank", fe.Field())
			if err != nil {
				return fe.Error()
			}
			return msg
		},
	)
	if err != nil {
		return fmt.Errorf("register notblank translation: %w", err)
	}

	translator = trans
	return nil
}

// validModelYear accepts empty values and years in [FirstModelYear, current year].
func validModelYear(fl validator.FieldLevel) bool {
	var year int64
	field := fl.Field()
	switch field.Kind() {
	case reflect.String:
		s := strings.TrimSpace(field.String())
		if s == "" {
			return true
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return false
		}
		year = n
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		year = field.Int()
	default:
		return false
	}
	return ValidModelYear(int(year))
}

// ValidModelYear reports whether year is a plausible vehicle model year.
func ValidModelYear(year int) bool {
	return year >= FirstModelYear && year <= time.Now().Year()
}

// ValidationMessages translates binding errors into pt_BR messages, one per
// failed field. Errors that are not validation errors are returned as is.
func ValidationMessages(err error) []string {
	if err == nil {
		return nil
	}
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return []string{err.Error()}
	}
	out := make([]string, 0, len(errs))
	for _, e := range errs {
		if translator != nil {
			out = append(out, e.Translate(translator))
		} else {
			out = append(out, e.Error())
		}
	}
	return out
}

// ValidationMessage joins ValidationMessages with "; ".
func ValidationMessage(err error) string {
	return strings.Join(ValidationMessages(err), "; ")
}
