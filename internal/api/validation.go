package api

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// validationErrorResponse maps a binding error to per-field messages, or a
// generic decode error when the body never parsed.
func validationErrorResponse(err error) gin.H {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[strings.ToLower(fe.Field())] = validationMessage(fe)
		}
		return gin.H{"errors": fields}
	}
	return gin.H{"detail": "malformed request body"}
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "email":
		return "enter a valid email address"
	case "gt":
		return "must be greater than " + fe.Param()
	default:
		return "invalid value"
	}
}
