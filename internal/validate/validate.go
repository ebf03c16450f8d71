// Package validate plugs go-playground/validator into gin binding with
// English messages keyed by JSON field name.
package validate

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// DateLayout is the wire format of calendar dates.
const DateLayout = "2006-01-02"

var hhmm = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

type DefaultValidator struct {
	once       sync.Once
	validate   *validator.Validate
	translator ut.Translator
}

var _ binding.StructValidator = &DefaultValidator{}

var std = &DefaultValidator{}

// Default is the process-wide validator installed into gin.
func Default() *DefaultValidator {
	return std
}

func (v *DefaultValidator) ValidateStruct(obj any) error {
	if kindOfData(obj) == reflect.Struct {
		v.lazyinit()
		if err := v.validate.Struct(obj); err != nil {
			return err
		}
	}
	return nil
}

func (v *DefaultValidator) Engine() any {
	v.lazyinit()
	return v.validate
}

func (v *DefaultValidator) lazyinit() {
	v.once.Do(func() {
		v.validate = validator.New(validator.WithRequiredStructEnabled())
		v.validate.SetTagName("binding")
		v.validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
			}
			if name == "" {
				return fld.Name
			}
			return name
		})

		_ = v.validate.RegisterValidation("date", func(fl validator.FieldLevel) bool {
			_, err := time.Parse(DateLayout, fl.Field().String())
			return err == nil
		})
		_ = v.validate.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
			return hhmm.MatchString(fl.Field().String())
		})

		locale := en.New()
		uni := ut.New(locale, locale)
		v.translator, _ = uni.GetTranslator("en")
		_ = en_translations.RegisterDefaultTranslations(v.validate, v.translator)

		v.registerCustomTranslations()
	})
}

func (v *DefaultValidator) registerCustomTranslations() {
	custom := map[string]string{
		"required": "{0} is required",
		"email":    "{0} must be a valid email address",
		"date":     "{0} must be a date in YYYY-MM-DD format",
		"hhmm":     "{0} must be a time in HH:MM format",
	}
	for tag, text := range custom {
		tag, text := tag, text
		_ = v.validate.RegisterTranslation(tag, v.translator, func(ut ut.Translator) error {
			return ut.Add(tag, text, true)
		}, func(ut ut.Translator, fe validator.FieldError) string {
			t, _ := ut.T(tag, fe.Field())
			return t
		})
	}
}

// Translate turns validator errors into field -> message. The second
// result is false when err is not a validation error.
func (v *DefaultValidator) Translate(err error) (map[string]any, bool) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, false
	}
	v.lazyinit()

	out := make(map[string]any, len(verrs))
	for _, fe := range verrs {
		out[fe.Field()] = fe.Translate(v.translator)
	}
	return out, true
}

// Var validates a single value against a tag, e.g. "required,email".
func (v *DefaultValidator) Var(field any, tag string) error {
	v.lazyinit()
	return v.validate.Var(field, tag)
}

func kindOfData(data any) reflect.Kind {
	value := reflect.ValueOf(data)
	valueType := value.Kind()
	if valueType == reflect.Ptr {
		valueType = value.Elem().Kind()
	}
	return valueType
}
