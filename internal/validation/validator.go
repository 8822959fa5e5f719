package validation

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Validator validates structs
type Validator struct{}

// NewValidator creates a new validator
func NewValidator() *Validator {
	return &Validator{}
}

// Validate validates a struct against its `validate` tags
func (v *Validator) Validate(s interface{}) error {
	val := reflect.ValueOf(s)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	if val.Kind() != reflect.Struct {
		return fmt.Errorf("validate expects a struct")
	}

	typ := val.Type()

	for i := 0; i < val.NumField(); i++ {
		field := val.Field(i)
		fieldType := typ.Field(i)
		tag := fieldType.Tag.Get("validate")

		if tag == "" {
			continue
		}

		if err := v.validateField(field, tag); err != nil {
			return fmt.Errorf("%s: %w", fieldType.Name, err)
		}
	}

	return nil
}

// validateField validates a single field
func (v *Validator) validateField(field reflect.Value, tag string) error {
	rules := strings.Split(tag, ",")

	for _, rule := range rules {
		parts := strings.SplitN(rule, "=", 2)
		ruleName := parts[0]
		arg := ""
		if len(parts) == 2 {
			arg = parts[1]
		}

		switch ruleName {
		case "required":
			if field.IsZero() {
				return fmt.Errorf("field is required")
			}

		case "email":
			if field.Kind() == reflect.String {
				email := field.String()
				at := strings.Index(email, "@")
				if at <= 0 || at == len(email)-1 {
					return fmt.Errorf("invalid email format")
				}
			}

		case "min":
			n, err := strconv.Atoi(arg)
			if err != nil {
				continue
			}
			if err := checkBound(field, int64(n), false); err != nil {
				return err
			}

		case "max":
			n, err := strconv.Atoi(arg)
			if err != nil {
				continue
			}
			if err := checkBound(field, int64(n), true); err != nil {
				return err
			}

		case "oneof":
			if field.Kind() == reflect.String {
				value := field.String()
				allowed := strings.Fields(arg)
				found := false
				for _, a := range allowed {
					if value == a {
						found = true
						break
					}
				}
				if !found {
					return fmt.Errorf("must be one of: %s", strings.Join(allowed, ", "))
				}
			}
		}
	}

	return nil
}

// checkBound enforces min/max against string length or numeric value
func checkBound(field reflect.Value, bound int64, isMax bool) error {
	var value int64

	switch field.Kind() {
	case reflect.String:
		value = int64(len(field.String()))
		if isMax && value > bound {
			return fmt.Errorf("maximum length is %d", bound)
		}
		if !isMax && value < bound {
			return fmt.Errorf("minimum length is %d", bound)
		}
		return nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		value = field.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		value = int64(field.Uint())
	default:
		return nil
	}

	if isMax && value > bound {
		return fmt.Errorf("maximum is %d", bound)
	}
	if !isMax && value < bound {
		return fmt.Errorf("minimum is %d", bound)
	}
	return nil
}
