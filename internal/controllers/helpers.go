package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/poofware/blog-auth-service/internal/utils"
)

const maxRequestBodyBytes = 1 << 20

var validate = newValidator()

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decodeAndValidate decodes a JSON body into dst and runs its validate tags.
// On failure it writes a 400 and returns false.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any, missingMsg string) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, missingMsg, nil, err)
		return false
	}
	if err := validate.Struct(dst); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, validationMessage(err, missingMsg), nil, err)
		return false
	}
	return true
}

// validationMessage keeps missingMsg whenever a required field is absent and
// otherwise names the first over-long field.
func validationMessage(err error, missingMsg string) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return missingMsg
	}
	var tooLong validator.FieldError
	for _, fe := range fieldErrs {
		switch fe.Tag() {
		case "required":
			return missingMsg
		case "max":
			if tooLong == nil {
				tooLong = fe
			}
		}
	}
	if tooLong != nil {
		return fmt.Sprintf("'%s' must be at most %s characters", tooLong.Field(), tooLong.Param())
	}
	return missingMsg
}
