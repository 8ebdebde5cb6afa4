package validation

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RegisterBindingValidators подключает собственные правила к валидатору gin.
// Вызывается один раз при сборке роутера.
func RegisterBindingValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("validation: неожиданный движок валидации %T", binding.Validator.Engine())
	}
	return v.RegisterValidation("notblank", notBlank)
}

// notBlank отклоняет строки, состоящие только из пробелов.
func notBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}
