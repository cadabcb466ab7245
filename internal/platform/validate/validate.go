package validate

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

type Issue struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// Error is returned by domain validation. Handlers render it as a 400 with field details.
type Error struct {
	Issues []Issue
}

func (e *Error) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		parts = append(parts, issue.Field+" "+issue.Reason)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// AsError unwraps a *Error from err.
func AsError(err error) (*Error, bool) {
	var verr *Error
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}

type Issues []Issue

func (is *Issues) Add(field, reason string) {
	field = strings.TrimSpace(field)
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return
	}
	*is = append(*is, Issue{Field: field, Reason: reason})
}

func (is *Issues) Required(field, value string) {
	if strings.TrimSpace(value) == "" {
		is.Add(field, "is required")
	}
}

// Err returns nil when nothing was recorded.
func (is Issues) Err() error {
	if len(is) == 0 {
		return nil
	}
	out := make([]Issue, len(is))
	copy(out, is)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Field == out[j].Field {
			return out[i].Reason < out[j].Reason
		}
		return out[i].Field < out[j].Field
	})
	return &Error{Issues: out}
}

var (
	once     sync.Once
	instance *validator.Validate
)

func engine() *validator.Validate {
	once.Do(func() {
		instance = validator.New(validator.WithRequiredStructEnabled())
		instance.RegisterTagNameFunc(func(field reflect.StructField) string {
			name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			if name == "" {
				return field.Name
			}
			return name
		})
	})
	return instance
}

// Struct runs the `validate` tags of v and returns the failures as Issues.
func Struct(v any) Issues {
	err := engine().Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return Issues{{Field: "", Reason: err.Error()}}
	}
	issues := make(Issues, 0, len(verrs))
	for _, fe := range verrs {
		issues.Add(fieldPath(fe), reason(fe))
	}
	return issues
}

func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return fe.Field()
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	case "lte":
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "email":
		return "must be a valid email"
	case "datetime":
		return "must be a date in " + fe.Param() + " format"
	case "min":
		return "must have at least " + fe.Param() + " item(s)"
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
