// Package validate checks request structs with go-playground/validator and
// converts failures into errors.ValidationError values.
package validate

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/Iron-Ham/clawteam/internal/errors"
	"github.com/Iron-Ham/clawteam/internal/store"
)

var (
	once     sync.Once
	instance *validator.Validate
)

// Validator returns the shared validator with the custom tags registered:
//
//	teamname  a name usable as a team storage key
//	notblank  a string with at least one non-space character
func Validator() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(jsonFieldName)
		_ = v.RegisterValidation("teamname", func(fl validator.FieldLevel) bool {
			return store.CheckTeamName(fl.Field().String()) == nil
		})
		_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})
		instance = v
	})
	return instance
}

// Struct validates req and returns the first failing field as a
// *errors.ValidationError.
func Struct(req any) error {
	err := Validator().Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return errors.NewValidationError("", nil, err.Error())
	}
	fe := fieldErrs[0]
	return errors.NewValidationError(fieldPath(fe), fe.Value(), message(fe))
}

// fieldPath drops the struct name prefix: "CreateRequest.agents[1]" -> "agents[1]".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return "is required"
	case "teamname":
		if err := store.CheckTeamName(fmt.Sprint(fe.Value())); err != nil {
			var ve *errors.ValidationError
			if errors.As(err, &ve) {
				return ve.Message
			}
		}
		return "is not a valid team name"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	default:
		return fmt.Sprintf("failed %q check", fe.Tag())
	}
}

func jsonFieldName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		return strings.ToLower(f.Name)
	}
	return name
}
