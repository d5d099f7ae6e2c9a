package bean

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("bean"), ",", 2)[0]
			if name == "" || name == "-" {
				return f.Name
			}
			return name
		})
		validate = v
	})
	return validate
}

// Validate checks the `validate` tags of a builder's staging struct and reports
// the first violation as a *ValidationError naming the bean property.
func Validate(beanName string, staging any) error {
	err := validatorInstance().Struct(staging)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("validate %s: %w", beanName, err)
	}
	fe := verrs[0]
	return &ValidationError{
		Bean:  beanName,
		Field: fe.Field(),
		Rule:  fe.Tag(),
		Err:   ruleError(fe.Tag()),
	}
}

func ruleError(tag string) error {
	switch tag {
	case "required":
		return ErrRequired
	case "gte":
		return ErrNegative
	default:
		return ErrInvalid
	}
}
