package shared

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/quotedesk/quotedesk/internal/platform/httpx"
)

// CheckStruct runs the decoded request through the validator and writes a
// field-level problem response on failure. It reports whether the request
// may proceed.
func CheckStruct(w http.ResponseWriter, v *validator.Validate, target any) bool {
	err := v.Struct(target)
	if err == nil {
		return true
	}
	fields := make(map[string]string)
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			fields[fe.Field()] = "failed " + fe.Tag() + " validation"
		}
	}
	httpx.ProblemFields(w, http.StatusBadRequest, "Validation Failed", fields)
	return false
}
