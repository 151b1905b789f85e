// Package validation registers the custom binding tags used by request DTOs.
package validation

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/yigit/placementcell/internal/pkg/gradesheet"
)

// Custom tags
const (
	TagRollNo = "rollno"
)

// RollNo reports whether the field holds a roll number that normalizes to a
// valid one
func RollNo(fl validator.FieldLevel) bool {
	return gradesheet.ValidRollNo(gradesheet.NormalizeRollNo(fl.Field().String()))
}

// Register adds the custom tags to v
func Register(v *validator.Validate) error {
	if err := v.RegisterValidation(TagRollNo, RollNo); err != nil {
		return fmt.Errorf("failed to register %s validation: %w", TagRollNo, err)
	}
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		}
		return name
	})
	return nil
}

// RegisterWithGin adds the custom tags to gin's default binding validator
func RegisterWithGin() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected binding validator engine %T", binding.Validator.Engine())
	}
	return Register(v)
}
