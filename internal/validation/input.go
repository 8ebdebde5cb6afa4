package validation

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Константы валидации
const (
	MinCategoryNameLength = 1
	MaxCategoryNameLength = 100
)

// ValidateLength проверяет длину строки.
func ValidateLength(fieldName, value string, min, max int) error {
	length := utf8.RuneCountInString(value)
	if min > 0 && length < min {
		return fmt.Errorf("%s должно быть не менее %d символов", fieldName, min)
	}
	if max > 0 && length > max {
		return fmt.Errorf("%s должно быть не более %d символов", fieldName, max)
	}
	return nil
}

// ValidateNonEmpty проверяет, что строка не пустая.
func ValidateNonEmpty(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s не может быть пустым", fieldName)
	}
	return nil
}

// ValidateCategoryName проверяет название категории перед записью.
func ValidateCategoryName(name string) error {
	if err := ValidateNonEmpty("название категории", name); err != nil {
		return err
	}

	name = strings.TrimSpace(name)
	if err := ValidateLength("название категории", name, MinCategoryNameLength, MaxCategoryNameLength); err != nil {
		return err
	}

	// Управляющие символы ломают выпадающие списки в админке
	for _, r := range name {
		if unicode.IsControl(r) {
			return fmt.Errorf("название категории содержит недопустимые символы")
		}
	}

	return nil
}

// ParseID разбирает положительный числовой идентификатор.
func ParseID(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("идентификатор не указан")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("идентификатор должен быть положительным числом")
	}
	return id, nil
}

// ParseOptionalID разбирает необязательный идентификатор: пустая строка, "null" и "root" означают корень.
func ParseOptionalID(raw string) (*int64, error) {
	switch strings.TrimSpace(strings.ToLower(raw)) {
	case "", "null", "root":
		return nil, nil
	}
	id, err := ParseID(raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
