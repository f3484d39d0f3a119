// Package validators builds the request validator shared by the HTTP handlers.
package validators

import (
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/chartviz/engine/internal/square"
	"github.com/chartviz/engine/internal/theme"
)

var (
	once     sync.Once
	instance *validator.Validate
)

// New returns the shared validator with the chart-specific tags registered:
// square_class, urgency and theme.
func New() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(jsonName)
		_ = v.RegisterValidation("square_class", func(fl validator.FieldLevel) bool {
			_, ok := square.ParseClass(fl.Field().String())
			return ok
		})
		_ = v.RegisterValidation("urgency", func(fl validator.FieldLevel) bool {
			return square.Urgency(fl.Field().String()).Valid()
		})
		_ = v.RegisterValidation("theme", func(fl validator.FieldLevel) bool {
			_, ok := theme.Lookup(fl.Field().String())
			return ok
		})
		instance = v
	})
	return instance
}

// Message flattens validation errors into one line keyed by JSON field names.
func Message(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msg := fe.Field() + " failed " + fe.Tag()
		if fe.Param() != "" {
			msg += "=" + fe.Param()
		}
		parts = append(parts, msg)
	}
	return strings.Join(parts, "; ")
}

func jsonName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		return f.Name
	}
	return name
}
