package category_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/videomarket-backend/internal/domain/entity"
	"github.com/ignatzorin/videomarket-backend/internal/infrastructure/memory"
	"github.com/ignatzorin/videomarket-backend/internal/usecase/category"
)

type fixture struct {
	repo *memory.CategoryRepository
	uc   *category.UseCases
}

func newFixture(t *testing.T, opts category.Options) *fixture {
	t.Helper()
	repo := memory.NewCategoryRepository()
	return &fixture{repo: repo, uc: category.NewUseCases(repo, opts)}
}

func (f *fixture) create(t *testing.T, name string, parent *entity.Category) *entity.Category {
	t.Helper()
	input := category.CreateCategoryInput{Name: name}
	if parent != nil {
		input.ParentID = &parent.ID
	}
	c, err := f.uc.Create.Execute(context.Background(), input)
	require.NoError(t, err)
	return c
}

func (f *fixture) get(t *testing.T, id int64) *entity.Category {
	t.Helper()
	c, err := f.repo.FindByID(context.Background(), id)
	require.NoError(t, err)
	return c
}

func (f *fixture) childNames(t *testing.T, parent *entity.Category) []string {
	t.Helper()
	var parentID *int64
	if parent != nil {
		parentID = &parent.ID
	}
	children, err := f.uc.ListChildren.Execute(context.Background(), parentID)
	require.NoError(t, err)
	names := make([]string, 0, len(children))
	for _, c := range children {
		names = append(names, c.Name)
	}
	return names
}

// assertTreeInvariants проверяет ацикличность, глубины и непрерывность позиций.
func (f *fixture) assertTreeInvariants(t *testing.T, maxDepth int) {
	t.Helper()
	ctx := context.Background()

	all, err := f.repo.ListAll(ctx)
	require.NoError(t, err)
	flat, err := f.uc.ListFlat.Execute(ctx)
	require.NoError(t, err, "дерево должно быть ацикличным")
	require.Len(t, flat, len(all))

	byID := make(map[int64]entity.Category, len(all))
	for _, c := range all {
		byID[c.ID] = c
	}

	groups := make(map[int64][]int)
	for _, c := range all {
		assert.LessOrEqual(t, c.Depth, maxDepth, "категория %d", c.ID)
		key := int64(0)
		if c.ParentID != nil {
			parent, ok := byID[*c.ParentID]
			require.True(t, ok, "родитель категории %d существует", c.ID)
			assert.Equal(t, parent.Depth+1, c.Depth, "глубина категории %d", c.ID)
			key = *c.ParentID
		} else {
			assert.Equal(t, 1, c.Depth, "глубина корня %d", c.ID)
		}
		groups[key] = append(groups[key], c.Position)
	}

	for parentID, positions := range groups {
		seen := make(map[int]bool, len(positions))
		for _, p := range positions {
			assert.False(t, seen[p], "повтор позиции %d у родителя %d", p, parentID)
			seen[p] = true
			assert.True(t, p >= 0 && p < len(positions), "позиция %d вне 0..%d у родителя %d", p, len(positions)-1, parentID)
		}
	}
}

func ids(categories ...*entity.Category) []int64 {
	result := make([]int64, 0, len(categories))
	for _, c := range categories {
		result = append(result, c.ID)
	}
	return result
}
