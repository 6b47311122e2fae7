package services

import (
	"errors"
	"reflect"
	"strings"

	"github.com/fremontasb/fremont-api/internal/models"
	"github.com/go-playground/validator/v10"
)

// Custom validation tags reported by the organization invariant.
const (
	tagGlobalRequired   = "global_required"
	tagClassNotRequired = "class_not_required"
	tagClassGradYear    = "class_grad_year"
	tagClubNotRequired  = "club_not_required"
	tagNoGradYear       = "no_grad_year"
)

var validationMessages = map[string]string{
	"required":          "this field is required",
	"email":             "must be a valid email address",
	"url":               "must be a valid URL",
	"oneof":             "must be one of: ",
	"max":               "is too long or too large",
	"min":               "is too short or too small",
	"datetime":          "must be a time formatted as HH:MM",
	tagGlobalRequired:   "global organizations must be required",
	tagClassNotRequired: "class organizations cannot be required",
	tagClassGradYear:    "class organizations need a required graduation year",
	tagClubNotRequired:  "clubs cannot be required",
	tagNoGradYear:       "only class organizations have a required graduation year",
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// Use JSON tag names for errors instead of Go struct names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	v.RegisterStructValidation(organizationInvariant, models.Organization{})
	return v
}

// organizationInvariant enforces the enrollment controls allowed for each organization type:
// GLOBAL is required for everyone, CLASS is bound to a graduation year, CLUB is neither.
func organizationInvariant(sl validator.StructLevel) {
	org := sl.Current().Interface().(models.Organization)

	switch org.Type {
	case models.OrganizationTypeGlobal:
		if !org.Required {
			sl.ReportError(org.Required, "required", "Required", tagGlobalRequired, "")
		}
		if org.RequiredGradYear != nil {
			sl.ReportError(org.RequiredGradYear, "required_grad_year", "RequiredGradYear", tagNoGradYear, "")
		}
	case models.OrganizationTypeClass:
		if org.Required {
			sl.ReportError(org.Required, "required", "Required", tagClassNotRequired, "")
		}
		if org.RequiredGradYear == nil {
			sl.ReportError(org.RequiredGradYear, "required_grad_year", "RequiredGradYear", tagClassGradYear, "")
		}
	case models.OrganizationTypeClub:
		if org.Required {
			sl.ReportError(org.Required, "required", "Required", tagClubNotRequired, "")
		}
		if org.RequiredGradYear != nil {
			sl.ReportError(org.RequiredGradYear, "required_grad_year", "RequiredGradYear", tagNoGradYear, "")
		}
	}
}

// validateStruct runs struct validation and converts failures into a *ValidationError.
func validateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return err
	}

	fields := make(map[string]string, len(fieldErrors))
	for _, fe := range fieldErrors {
		msg, ok := validationMessages[fe.Tag()]
		if !ok {
			msg = "is invalid"
		}
		if fe.Tag() == "oneof" {
			msg += fe.Param()
		}
		fields[fieldName(fe)] = msg
	}
	return &ValidationError{Fields: fields}
}

// fieldName returns the JSON path of a field error without the root struct name.
func fieldName(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}
