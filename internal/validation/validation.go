package validation

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/mauv0809/slot-matcher/internal/slot"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("validation failed")

var (
	global     *validator.Validate
	phoneRegex = regexp.MustCompile(`^0\d{9,10}$`)
)

func init() {
	global = New()
}

// New builds a validator with the slot-specific tags registered.
func New() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("slotdate", func(fl validator.FieldLevel) bool {
		return slot.ValidateDate(fl.Field().String()) == nil
	})
	_ = v.RegisterValidation("slottime", func(fl validator.FieldLevel) bool {
		return slot.ValidateTime(fl.Field().String()) == nil
	})
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phoneRegex.MatchString(NormalizePhone(fl.Field().String()))
	})
	return v
}

// Error describes the first failing field.
type Error struct {
	Field   string
	Tag     string
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return ErrInvalid }

// Struct validates s and maps the first failure to a readable message.
func Struct(ctx context.Context, s any) error {
	return parse(global.StructCtx(ctx, s))
}

// NormalizePhone keeps only the digits of a phone number.
func NormalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func parse(err error) error {
	if err == nil {
		return nil
	}
	var vErrors validator.ValidationErrors
	if !errors.As(err, &vErrors) || len(vErrors) == 0 {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	fe := vErrors[0]
	field := fe.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}

	var msg string
	switch fe.Tag() {
	case "required":
		msg = field + " is required"
	case "min", "gte":
		msg = fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max", "lte":
		msg = fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "oneof":
		msg = fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	case "slotdate":
		msg = field + " must be a date in YYYY-MM-DD format"
	case "slottime":
		msg = fmt.Sprintf("%s must be one of %s", field, strings.Join(slot.Times, ", "))
	case "phone":
		msg = field + " must be a mobile phone number"
	case "dive":
		msg = field + " is invalid"
	default:
		msg = fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
	return &Error{Field: field, Tag: fe.Tag(), Message: msg}
}
