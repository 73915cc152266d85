package http

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

var validate = newValidator()

// ValidationError describes one rejected request field.
type ValidationError struct {
	Code    string                 `json:"code,omitempty" example:"ERR_LTE"`
	Field   string                 `json:"field,omitempty" example:"steps"`
	Message string                 `json:"message,omitempty" example:"steps must be less than or equal to 10000"`
	Params  map[string]interface{} `json:"params,omitempty"`
}

// newValidator reports fields by their json name so messages match the payload.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "param", "query"} {
			name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return f.Name
	})
	return v
}

// ReadAndValidateRequest binds path, query and body into req, fills defaults
// and validates. It returns nil or a []ValidationError ready to be sent.
func ReadAndValidateRequest(c echo.Context, req interface{}) []ValidationError {
	// An empty body is allowed; defaults fill the gaps.
	if err := c.Bind(req); err != nil {
		return validationErrors(err)
	}

	if err := defaults.Set(req); err != nil {
		return validationErrors(err)
	}

	if err := validate.StructCtx(c.Request().Context(), req); err != nil {
		return validationErrors(err)
	}

	return nil
}

func validationErrors(err error) []ValidationError {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make([]ValidationError, 0, len(verrs))
		for _, fe := range verrs {
			out = append(out, fieldError(fe))
		}
		return out
	}

	msg := err.Error()
	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg = fmt.Sprint(he.Message)
	}
	return []ValidationError{{Code: "ERR_UNKNOWN", Message: msg}}
}

// rule renders one validator tag: the message template takes the field name
// and the tag parameter, and param names the key the parameter is exposed as.
type rule struct {
	format string
	param  string
}

var rules = map[string]rule{
	"required": {"%s is required", ""},
	"min":      {"%s must be at least %s", "min"},
	"max":      {"%s must be at most %s", "max"},
	"gt":       {"%s must be greater than %s", "value"},
	"gte":      {"%s must be greater than or equal to %s", "min"},
	"lt":       {"%s must be less than %s", "value"},
	"lte":      {"%s must be less than or equal to %s", "max"},
	"oneof":    {"%s must be one of: %s", "options"},
}

func fieldError(fe validator.FieldError) ValidationError {
	ve := ValidationError{Code: "ERR_" + strings.ToUpper(fe.Tag()), Field: fe.Field()}
	r, ok := rules[fe.Tag()]
	if !ok {
		ve.Message = fmt.Sprintf("%s failed validation: %s", fe.Field(), fe.Tag())
		return ve
	}

	param := fe.Param()
	switch {
	case fe.Tag() == "oneof":
		ve.Message = fmt.Sprintf(r.format, fe.Field(), strings.ReplaceAll(param, " ", ", "))
		ve.Params = map[string]interface{}{r.param: strings.Fields(param)}
		return ve
	case (fe.Tag() == "min" || fe.Tag() == "max") && fe.Kind() == reflect.String:
		ve.Message = fmt.Sprintf(r.format+" characters", fe.Field(), param)
	case r.param == "":
		ve.Message = fmt.Sprintf(r.format, fe.Field())
	default:
		ve.Message = fmt.Sprintf(r.format, fe.Field(), param)
	}
	if r.param != "" {
		ve.Params = map[string]interface{}{r.param: param}
	}
	return ve
}
