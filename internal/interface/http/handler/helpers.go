package handler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/ignatzorin/videomarket-backend/internal/pkg/apperror"
	"github.com/ignatzorin/videomarket-backend/internal/validation"
)

// pathID читает числовой параметр пути. IDValidator отсекает мусор раньше,
// но хендлер не полагается на порядок middleware.
func pathID(c *gin.Context, name string) (int64, error) {
	id, err := validation.ParseID(c.Param(name))
	if err != nil {
		return 0, apperror.New(apperror.ErrCodeBadRequest, "некорректный "+name+": "+err.Error())
	}
	return id, nil
}

// queryParentID разбирает необязательный parent_id из строки запроса.
func queryParentID(c *gin.Context) (*int64, error) {
	parentID, err := validation.ParseOptionalID(c.Query("parent_id"))
	if err != nil {
		return nil, apperror.New(apperror.ErrCodeBadRequest, "некорректный parent_id: "+err.Error())
	}
	return parentID, nil
}

// bindError превращает ошибку биндинга gin в ответ 400 без внутренних деталей валидатора.
func bindError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return apperror.Wrap(err, apperror.ErrCodeBadRequest, "некорректные данные запроса")
	}

	fe := fieldErrs[0]
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required", "notblank":
		return apperror.Wrap(err, apperror.ErrCodeValidation, field+" не может быть пустым")
	case "max":
		return apperror.Wrap(err, apperror.ErrCodeValidation,
			fmt.Sprintf("%s должно быть не более %s символов", field, fe.Param()))
	default:
		return apperror.Wrap(err, apperror.ErrCodeValidation, field+" заполнено некорректно")
	}
}
