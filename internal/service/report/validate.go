package report

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/kapu/influencer-insight-go/internal/domain"
)

// SchemaError lists report fields that decoded but violate the contract.
type SchemaError struct {
	Fields []string
}

func (e *SchemaError) Error() string {
	return "report failed schema validation: " + strings.Join(e.Fields, ", ")
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func reportValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		validate.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		validate.RegisterStructValidation(reportLevel, domain.AnalysisReport{})
	})
	return validate
}

func reportLevel(sl validator.StructLevel) {
	r, ok := sl.Current().Interface().(domain.AnalysisReport)
	if ok && r.MissingScore() {
		sl.ReportError(r.Score, "score", "Score", "required", "")
	}
}

// Validate checks required fields, enum values and numeric ranges.
func Validate(r *domain.AnalysisReport) error {
	if r == nil {
		return &SchemaError{Fields: []string{"report"}}
	}

	err := reportValidator().Struct(r)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	fields := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		ns := fe.Namespace()
		if idx := strings.IndexByte(ns, '.'); idx >= 0 {
			ns = ns[idx+1:]
		}
		fields = append(fields, ns+" ("+fe.Tag()+")")
	}
	return &SchemaError{Fields: fields}
}
