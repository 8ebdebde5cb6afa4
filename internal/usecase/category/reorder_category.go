package category

import (
	"context"

	"github.com/ignatzorin/videomarket-backend/internal/domain/entity"
	"github.com/ignatzorin/videomarket-backend/internal/domain/repository"
	"github.com/ignatzorin/videomarket-backend/internal/logger"
	"github.com/ignatzorin/videomarket-backend/internal/pkg/apperror"
)

type ReorderCategoryUseCase struct {
	repo   repository.CategoryRepository
	events eventSink
}

func NewReorderCategoryUseCase(repo repository.CategoryRepository, events eventSink) *ReorderCategoryUseCase {
	return &ReorderCategoryUseCase{repo: repo, events: events}
}

// Execute ставит категорию перед beforeID или, если beforeID == nil, в конец списка.
func (uc *ReorderCategoryUseCase) Execute(ctx context.Context, id int64, beforeID *int64) (*entity.Category, error) {
	var reordered *entity.Category
	changed := false
	err := uc.repo.InTx(ctx, func(tx repository.CategoryTx) error {
		node, err := tx.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		reordered = node
		if beforeID != nil && *beforeID == id {
			return nil
		}

		if err := tx.LockSiblings(ctx, node.ParentID); err != nil {
			return err
		}
		siblings, err := tx.ListSiblings(ctx, node.ParentID)
		if err != nil {
			return err
		}

		ordered := withoutID(siblingIDs(siblings), id)
		if beforeID == nil {
			ordered = append(ordered, id)
		} else {
			idx := indexOf(ordered, *beforeID)
			if idx < 0 {
				return notASibling(ctx, tx, *beforeID)
			}
			ordered = append(ordered[:idx], append([]int64{id}, ordered[idx:]...)...)
		}

		if err := tx.UpdatePositions(ctx, ordered); err != nil {
			return err
		}
		node.Position = indexOf(ordered, id)
		changed = true
		return nil
	})
	if err != nil {
		return nil, storeError(err, "не удалось изменить порядок категорий")
	}

	if changed {
		logger.WithCategory(id).WithField("position", reordered.Position).Debug("порядок категорий изменён")
		uc.events.emit(entity.CategoryReordered, id, reordered.ParentID)
	}
	return reload(ctx, uc.repo, reordered), nil
}

// notASibling различает несуществующий before_id и категорию из другого списка.
func notASibling(ctx context.Context, tx repository.CategoryTx, beforeID int64) error {
	if _, err := tx.Get(ctx, beforeID); err != nil {
		if apperror.IsNotFound(err) {
			return apperror.ErrBeforeNotFound
		}
		return err
	}
	return apperror.Validation("before_id должен указывать на категорию того же уровня")
}

func indexOf(ids []int64, id int64) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}
