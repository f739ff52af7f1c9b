// Package validate wraps a singleton go-playground validator with english messages
package validate

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	perr "loteria/internal/platform/errors"
	"loteria/internal/platform/logger"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// FieldLevel aliases validator.FieldLevel
type FieldLevel = validator.FieldLevel

// FieldError aliases validator.FieldError
type FieldError = validator.FieldError

// Svc holds the validator and its translator
type Svc struct {
	Validator  *validator.Validate
	Translator ut.Translator
}

var (
	vOnce sync.Once
	vSvc  *Svc
)

// Init builds the singleton with english translations, json tag names and nullable type support
func Init() *Svc {
	vOnce.Do(func() {
		enLoc := en.New()
		uni := ut.New(enLoc, enLoc)
		trans, _ := uni.GetTranslator("en")

		v := validator.New(validator.WithRequiredStructEnabled())

		// prefer json tag names in messages
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			tag := fld.Tag.Get("json")
			if tag == "-" || tag == "" {
				return fld.Name
			}
			if idx := strings.Index(tag, ","); idx >= 0 {
				tag = tag[:idx]
			}
			return tag
		})

		// nullable columns validate as their inner value, or as nil when null
		v.RegisterCustomTypeFunc(nullableValue,
			pgtype.Int8{}, pgtype.Text{}, pgtype.Date{}, pgtype.Bool{}, decimal.NullDecimal{})

		_ = en_translations.RegisterDefaultTranslations(v, trans)

		registerShort(v, trans, "min", "{0} must be at least {1}")
		registerShort(v, trans, "max", "{0} must be at most {1}")
		registerShort(v, trans, "gte", "{0} must be {1} or greater")

		vSvc = &Svc{Validator: v, Translator: trans}
	})
	return vSvc
}

// Get returns the singleton, initializing on first use
func Get() *Svc { return Init() }

// RegisterValidation registers a custom tag with an optional english message ("{0}" is the field)
func RegisterValidation(tag string, fn validator.Func, message string) error {
	s := Get()
	if err := s.Validator.RegisterValidation(tag, fn); err != nil {
		return err
	}
	if message != "" {
		registerShort(s.Validator, s.Translator, tag, message)
	}
	return nil
}

// Struct validates v and maps failures to a perr validation error tagged with the first field
func Struct(v any) error {
	err := Get().Validator.Struct(v)
	if err == nil {
		return nil
	}
	var inv *validator.InvalidValidationError
	if errors.As(err, &inv) {
		logger.Get().Error().Err(inv).Msg("validator internal error")
		return perr.Wrap(inv, perr.ErrorCodeUnknown, "validation error")
	}
	field, msg := FieldAndMessage(err)
	return perr.WithField(perr.Newf(perr.ErrorCodeValidation, "%s", msg), field)
}

// FieldAndMessage returns the first failing field and its translated message
func FieldAndMessage(err error) (field, message string) {
	if err == nil {
		return "", ""
	}
	var inv *validator.InvalidValidationError
	if errors.As(err, &inv) {
		return "", inv.Error()
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			return fe.Field(), fe.Translate(Get().Translator)
		}
	}
	return "", err.Error()
}

func nullableValue(field reflect.Value) any {
	switch v := field.Interface().(type) {
	case pgtype.Int8:
		if v.Valid {
			return v.Int64
		}
	case pgtype.Text:
		if v.Valid {
			return v.String
		}
	case pgtype.Date:
		if v.Valid {
			return v.Time
		}
	case pgtype.Bool:
		if v.Valid {
			return v.Bool
		}
	case decimal.NullDecimal:
		if v.Valid {
			f, _ := v.Decimal.Float64()
			return f
		}
	}
	return nil
}

func registerShort(v *validator.Validate, trans ut.Translator, tag, text string) {
	_ = v.RegisterTranslation(tag, trans,
		func(ut ut.Translator) error {
			return ut.Add(tag, text, true)
		},
		func(ut ut.Translator, fe validator.FieldError) string {
			msg, _ := ut.T(tag, fe.Field(), fe.Param())
			return msg
		},
	)
}
