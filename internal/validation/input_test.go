package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCategoryName(t *testing.T) {
	cases := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"обычное имя", "Музыка", false},
		{"пробелы по краям", "  Рок  ", false},
		{"пустое", "", true},
		{"только пробелы", "   ", true},
		{"ровно 100 символов", strings.Repeat("я", MaxCategoryNameLength), false},
		{"101 символ", strings.Repeat("я", MaxCategoryNameLength+1), true},
		{"управляющий символ", "Рок\n", false},
		{"управляющий символ внутри", "Р\x00ок", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateCategoryName(tc.input)
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParseID(t *testing.T) {
	id, err := ParseID(" 42 ")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	for _, raw := range []string{"", "0", "-1", "abc", "1.5"} {
		_, err := ParseID(raw)
		assert.Error(t, err, raw)
	}
}

func TestParseOptionalID(t *testing.T) {
	for _, raw := range []string{"", "null", "root", "ROOT"} {
		id, err := ParseOptionalID(raw)
		require.NoError(t, err, raw)
		assert.Nil(t, id, raw)
	}

	id, err := ParseOptionalID("7")
	require.NoError(t, err)
	require.NotNil(t, id)
	assert.Equal(t, int64(7), *id)

	_, err = ParseOptionalID("-3")
	assert.Error(t, err)
}
