package validate

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"localbazaar/internal/domain"
)

var (
	reID    = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
	rePhone = regexp.MustCompile(`^\+?[0-9]{7,15}$`)
)

// FieldError is one rejected input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Errors is returned when a request body fails validation.
type Errors struct {
	Fields []FieldError
}

func (e *Errors) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Fail builds an *Errors carrying a single field message.
func Fail(field, msg string) *Errors {
	return &Errors{Fields: []FieldError{{Field: field, Message: msg}}}
}

var v = newValidator()

func newValidator() *validator.Validate {
	val := validator.New(validator.WithRequiredStructEnabled())
	val.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	val.RegisterCustomTypeFunc(func(f reflect.Value) any {
		if d, ok := f.Interface().(decimal.Decimal); ok {
			return d.InexactFloat64()
		}
		return nil
	}, decimal.Decimal{})
	_ = val.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		return domain.ValidCategory(fl.Field().String())
	})
	_ = val.RegisterValidation("condition", func(fl validator.FieldLevel) bool {
		return domain.ValidCondition(fl.Field().String())
	})
	_ = val.RegisterValidation("reason", func(fl validator.FieldLevel) bool {
		return domain.ValidReason(fl.Field().String())
	})
	_ = val.RegisterValidation("order_status", func(fl validator.FieldLevel) bool {
		return domain.OrderStatusValid(fl.Field().String())
	})
	_ = val.RegisterValidation("report_status", func(fl validator.FieldLevel) bool {
		return domain.ReportStatusValid(fl.Field().String())
	})
	_ = val.RegisterValidation("report_action", func(fl validator.FieldLevel) bool {
		return domain.ReportActionValid(fl.Field().String())
	})
	_ = val.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return rePhone.MatchString(fl.Field().String())
	})
	return val
}

// Struct runs the `validate` tags on s and returns *Errors on failure.
func Struct(s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &Errors{}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{Field: fieldPath(fe), Message: message(fe)})
	}
	return out
}

func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must have at least %s item(s)", fe.Param())
		}
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return "must be at least " + fe.Param()
	case "max":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must have at most %s item(s)", fe.Param())
		}
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return "must be at most " + fe.Param()
	case "gte":
		return "must be " + fe.Param() + " or more"
	case "email":
		return "must be a valid email"
	case "url":
		return "must be a valid URL"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "category":
		return "must be one of: " + strings.Join(domain.Categories, ", ")
	case "condition":
		return "must be one of: " + strings.Join(domain.Conditions, ", ")
	case "reason":
		return "must be one of: " + strings.Join(domain.ReportReasons, ", ")
	case "order_status":
		return "must be one of: pending, accepted, rejected, completed, cancelled"
	case "report_status":
		return "must be one of: pending, reviewed, resolved, dismissed"
	case "report_action":
		return "must be one of: none, warning, listing_removed, user_suspended"
	case "phone":
		return "must be 7 to 15 digits"
	}
	return "is invalid"
}

// Q normalizes a search keyword: trimmed and cut to 50 characters.
func Q(s string) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) > 50 {
		s = strings.TrimSpace(string([]rune(s)[:50]))
	}
	return s
}

// ClampQty keeps a cart quantity within 1..50.
func ClampQty(n int) int {
	if n < 1 {
		return 1
	}
	if n > 50 {
		return 50
	}
	return n
}

// ID validates a path identifier.
func ID(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && reID.MatchString(s)
}

// Positive parses a positive integer query value, falling back to def and
// capping at max when max > 0.
func Positive(s string, def, max int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return def
	}
	if max > 0 && n > max {
		return max
	}
	return n
}

// Price parses an optional non-negative price bound.
func Price(s string) (*decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, true
	}
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return nil, false
	}
	return &d, true
}
