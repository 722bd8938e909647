package config

import (
	"errors"
	"fmt"
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
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterStructValidation(validateAnalyzer, AnalyzerConfig{})
		validate.RegisterStructValidation(validateServer, ServerConfig{})
	})
	return validate
}

// Validate checks cfg. The returned error wraps ErrInvalidConfig and lists
// every failing field.
func Validate(cfg *Config) error {
	err := validatorInstance().Struct(cfg)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}
	return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	field := strings.TrimPrefix(fe.Namespace(), "Config.")
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %q", field, fe.Param(), fe.Value())
	case "positive":
		return field + " must be positive"
	default:
		return fmt.Sprintf("%s failed %s%s", field, fe.Tag(), paramSuffix(fe.Param()))
	}
}

func paramSuffix(p string) string {
	if p == "" {
		return ""
	}
	return "=" + p
}

func validateAnalyzer(sl validator.StructLevel) {
	a := sl.Current().Interface().(AnalyzerConfig)
	if a.Backend == "http" && a.Endpoint == "" {
		sl.ReportError(a.Endpoint, "Endpoint", "Endpoint", "required", "")
	}
	if a.Debounce.Duration <= 0 {
		sl.ReportError(a.Debounce, "Debounce", "Debounce", "positive", "")
	}
	if a.Timeout.Duration < 0 {
		sl.ReportError(a.Timeout, "Timeout", "Timeout", "gte", "0")
	}
}

func validateServer(sl validator.StructLevel) {
	s := sl.Current().Interface().(ServerConfig)
	if s.ShutdownTimeout.Duration <= 0 {
		sl.ReportError(s.ShutdownTimeout, "ShutdownTimeout", "ShutdownTimeout", "positive", "")
	}
}
