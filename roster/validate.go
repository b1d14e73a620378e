package roster

import (
	"errors"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/shopspring/decimal"
	"github.com/warp/teaching-payroll/payment"
)

var (
	validate   *validator.Validate
	translator ut.Translator

	classTypeTag  = "classtype"
	classTypeText = "{0} must be one of normal, special, international"

	// Exact decimal bounds; gte/gt would compare through float64.
	decimalRules = map[string]struct {
		text string
		ok   func(v, bound decimal.Decimal) bool
	}{
		"decgte": {"{0} must be {1} or greater", decimal.Decimal.GreaterThanOrEqual},
		"decgt":  {"{0} must be greater than {1}", decimal.Decimal.GreaterThan},
	}
)

func init() {
	validate = validator.New()

	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ = uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// Report JSON names, not Go field names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// Decimals reach the decimal rules as their exact string form.
	validate.RegisterCustomTypeFunc(func(v reflect.Value) any {
		return v.Interface().(decimal.Decimal).String()
	}, decimal.Decimal{})
	for tag, rule := range decimalRules {
		registerDecimalRule(tag, rule.text, rule.ok)
	}

	_ = validate.RegisterValidation(classTypeTag, func(fl validator.FieldLevel) bool {
		return payment.ClassType(fl.Field().String()).Valid()
	})
	_ = validate.RegisterTranslation(classTypeTag, translator,
		func(t ut.Translator) error { return t.Add(classTypeTag, classTypeText, false) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(classTypeTag, fe.Field())
			return s
		},
	)

	validate.RegisterStructValidation(func(sl validator.StructLevel) {
		s := sl.Current().Interface().(Semester)
		if !s.StartDate.IsZero() && !s.EndDate.IsZero() && !s.StartDate.Before(s.EndDate) {
			sl.ReportError(s.EndDate, "endDate", "EndDate", "gtfield", "startDate")
		}
	}, Semester{})
}

func registerDecimalRule(tag, text string, ok func(v, bound decimal.Decimal) bool) {
	_ = validate.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
		v, err := decimal.NewFromString(fl.Field().String())
		if err != nil {
			return false
		}
		return ok(v, decimal.RequireFromString(fl.Param()))
	})
	_ = validate.RegisterTranslation(tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, false) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field(), fe.Param())
			return s
		},
	)
}

// ErrInvalid is the sentinel every ValidationError unwraps to.
var ErrInvalid = errors.New("invalid roster record")

// ValidationError maps JSON field names to readable messages.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	msgs := make([]string, len(keys))
	for i, k := range keys {
		msgs[i] = e.Fields[k]
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrInvalid }

// Validate checks a roster record against its struct tags.
func Validate(record any) error {
	err := validate.Struct(record)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fe.Translate(translator)
	}
	return &ValidationError{Fields: fields}
}
