package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/videomarket-backend/internal/domain/entity"
	"github.com/ignatzorin/videomarket-backend/internal/domain/repository"
	"github.com/ignatzorin/videomarket-backend/internal/pkg/apperror"
)

func insert(t *testing.T, repo *CategoryRepository, name string, parentID *int64, position, depth int) int64 {
	t.Helper()
	var id int64
	err := repo.InTx(context.Background(), func(tx repository.CategoryTx) error {
		c := &entity.Category{Name: name, ParentID: parentID, Position: position, Depth: depth}
		if err := tx.Insert(context.Background(), c); err != nil {
			return err
		}
		id = c.ID
		return nil
	})
	require.NoError(t, err)
	return id
}

func TestCategoryRepository_RollbackDiscardsChanges(t *testing.T) {
	repo := NewCategoryRepository()
	rootID := insert(t, repo, "Музыка", nil, 0, 1)

	boom := errors.New("boom")
	err := repo.InTx(context.Background(), func(tx repository.CategoryTx) error {
		require.NoError(t, tx.UpdateName(context.Background(), rootID, "Кино"))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := repo.FindByID(context.Background(), rootID)
	require.NoError(t, err)
	assert.Equal(t, "Музыка", got.Name)
}

func TestCategoryRepository_CommitChecksConstraints(t *testing.T) {
	repo := NewCategoryRepository()
	insert(t, repo, "A", nil, 0, 1)

	// Две корневые категории на одной позиции.
	err := repo.InTx(context.Background(), func(tx repository.CategoryTx) error {
		return tx.Insert(context.Background(), &entity.Category{Name: "B", Position: 0, Depth: 1})
	})
	assert.True(t, apperror.IsConflict(err))

	// Имена сравниваются без учёта регистра.
	err = repo.InTx(context.Background(), func(tx repository.CategoryTx) error {
		return tx.Insert(context.Background(), &entity.Category{Name: "a", Position: 1, Depth: 1})
	})
	assert.True(t, apperror.IsConflict(err))

	roots, err := repo.ListChildren(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, roots, 1)
}

func TestCategoryRepository_InsertUnderMissingParent(t *testing.T) {
	repo := NewCategoryRepository()
	missing := int64(42)

	err := repo.InTx(context.Background(), func(tx repository.CategoryTx) error {
		return tx.Insert(context.Background(), &entity.Category{Name: "X", ParentID: &missing, Depth: 2})
	})
	assert.True(t, apperror.IsConflict(err))
}

func TestCategoryRepository_SubtreeAndVideos(t *testing.T) {
	repo := NewCategoryRepository()
	rootID := insert(t, repo, "Root", nil, 0, 1)
	childID := insert(t, repo, "Child", &rootID, 0, 2)
	leafID := insert(t, repo, "Leaf", &childID, 0, 3)

	videoID := repo.AddVideo(&leafID)
	repo.AddVideo(&rootID)

	err := repo.InTx(context.Background(), func(tx repository.CategoryTx) error {
		nodes, err := tx.Subtree(context.Background(), rootID)
		require.NoError(t, err)
		assert.Len(t, nodes, 3)
		assert.Equal(t, 2, entity.SubtreeHeight(nodes))

		total, err := tx.CountVideos(context.Background(), []int64{rootID, childID, leafID})
		require.NoError(t, err)
		assert.Equal(t, 2, total)

		path, err := tx.LockPath(context.Background(), leafID)
		require.NoError(t, err)
		require.Len(t, path, 3)
		assert.Equal(t, rootID, path[2].ID)

		cleared, err := tx.ClearVideoCategories(context.Background(), []int64{childID, leafID})
		require.NoError(t, err)
		assert.Equal(t, int64(1), cleared)

		deleted, err := tx.DeleteCategories(context.Background(), []int64{childID, leafID})
		require.NoError(t, err)
		assert.Equal(t, int64(2), deleted)
		return nil
	})
	require.NoError(t, err)

	categoryID, ok := repo.VideoCategory(videoID)
	assert.True(t, ok)
	assert.Nil(t, categoryID)

	root, err := repo.FindByID(context.Background(), rootID)
	require.NoError(t, err)
	assert.Equal(t, 0, root.ChildrenCount)
}

func TestCategoryRepository_CorruptParentChain(t *testing.T) {
	repo := NewCategoryRepository()
	aID := insert(t, repo, "A", nil, 0, 1)
	bID := insert(t, repo, "B", &aID, 0, 2)

	// Цикл создаётся в обход проверок, чтобы проверить защиту обхода.
	repo.mu.Lock()
	a := repo.state.categories[aID]
	a.ParentID = &bID
	repo.state.categories[aID] = a
	repo.mu.Unlock()

	err := repo.InTx(context.Background(), func(tx repository.CategoryTx) error {
		_, err := tx.LockPath(context.Background(), bID)
		return err
	})
	assert.Equal(t, apperror.ErrCodeCorruptTree, apperror.CodeOf(err))
}
