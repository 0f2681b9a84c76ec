package utils

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/harentsoaR/smart-health-api/internal/models"
)

// RegisterValidators adds the domain tags (weekday, clock, isodate, gender,
// reporttype, reportformat) and reports field errors under their JSON names.
func RegisterValidators(v *validator.Validate) error {
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})

	rules := map[string]validator.Func{
		"weekday": func(fl validator.FieldLevel) bool {
			return models.ValidWeekday(fl.Field().String())
		},
		"clock": func(fl validator.FieldLevel) bool {
			_, err := models.ParseClock(fl.Field().String())
			return err == nil
		},
		"isodate": func(fl validator.FieldLevel) bool {
			_, err := models.ParseDate(fl.Field().String())
			return err == nil
		},
		"gender": func(fl validator.FieldLevel) bool {
			return models.ValidGender(fl.Field().String())
		},
		"reporttype": func(fl validator.FieldLevel) bool {
			return models.ValidReportType(fl.Field().String())
		},
		"reportformat": func(fl validator.FieldLevel) bool {
			return models.ValidReportFormat(fl.Field().String())
		},
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return err
		}
	}
	return nil
}
