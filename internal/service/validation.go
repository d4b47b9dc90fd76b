package service

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func structValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		// report fields by their wire names
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "" || name == "-" {
				return fld.Name
			}
			return name
		})
	})
	return validate
}

// validateParams runs struct tag validation and converts failures into a ValidationError
func validateParams(params any) *ValidationError {
	vErr := &ValidationError{}

	err := structValidator().Struct(params)
	if err == nil {
		return vErr
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		vErr.add("params", err.Error())
		return vErr
	}
	for _, fe := range fieldErrs {
		switch fe.Tag() {
		case "required":
			vErr.add(fe.Field(), fe.Field()+" is required")
		case "oneof":
			vErr.add(fe.Field(), fe.Field()+" must be one of: "+fe.Param())
		default:
			vErr.add(fe.Field(), fe.Field()+" is invalid")
		}
	}
	return vErr
}
