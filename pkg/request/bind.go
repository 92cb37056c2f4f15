package request

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/mo-amir99/course-progress-server/pkg/apperrors"
)

var registerOnce sync.Once

// useJSONNames makes validator report fields by their json tag.
func useJSONNames() {
	registerOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			v.RegisterTagNameFunc(func(f reflect.StructField) string {
				name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
				if name == "-" {
					return ""
				}
				return name
			})
		}
	})
}

// BindJSON decodes the request body into dst and runs struct validation.
// Failures come back as a 400 AppError carrying per-field messages.
func BindJSON(c *gin.Context, dst interface{}) error {
	useJSONNames()
	if err := c.ShouldBindWith(dst, binding.JSON); err != nil {
		return translate(err)
	}
	return nil
}

// Validate runs the shared validator against an already decoded value.
func Validate(v interface{}) error {
	useJSONNames()
	if err := binding.Validator.ValidateStruct(v); err != nil {
		return translate(err)
	}
	return nil
}

// ParamUUID reads a path parameter and parses it as a UUID.
func ParamUUID(c *gin.Context, name string) (uuid.UUID, error) {
	raw := strings.TrimSpace(c.Param(name))
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperrors.Validation(fmt.Sprintf("invalid %s", name), err)
	}
	return id, nil
}

func translate(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[jsonPath(fe)] = describe(fe)
		}
		return apperrors.Validation("validation failed", err).WithFields(fields)
	}
	return apperrors.Validation("invalid request body", err)
}

func jsonPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if idx := strings.Index(ns, "."); idx >= 0 {
		ns = ns[idx+1:]
	}
	if ns == "" {
		return fe.Field()
	}
	return lowerFirst(ns)
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	case "lte":
		return "must be less than or equal to " + fe.Param()
	case "email":
		return "must be a valid email"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "uuid":
		return "must be a valid id"
	case "url":
		return "must be a valid URL"
	}
	return "is invalid"
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
