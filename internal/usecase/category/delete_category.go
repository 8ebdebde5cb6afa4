package category

import (
	"context"

	"github.com/ignatzorin/videomarket-backend/internal/domain/entity"
	"github.com/ignatzorin/videomarket-backend/internal/domain/repository"
	"github.com/ignatzorin/videomarket-backend/internal/domain/valueobject"
	"github.com/ignatzorin/videomarket-backend/internal/logger"
	"github.com/ignatzorin/videomarket-backend/internal/pkg/apperror"
	"github.com/sirupsen/logrus"
)

type DeleteCategoryUseCase struct {
	repo   repository.CategoryRepository
	events eventSink
}

func NewDeleteCategoryUseCase(repo repository.CategoryRepository, events eventSink) *DeleteCategoryUseCase {
	return &DeleteCategoryUseCase{repo: repo, events: events}
}

// Execute удаляет категорию со всем поддеревом и снимает категорию с видео из него.
func (uc *DeleteCategoryUseCase) Execute(ctx context.Context, id int64, strategy valueobject.DeleteStrategy) (*entity.DeleteResult, error) {
	if !strategy.IsValid() {
		return nil, apperror.Validation("неподдерживаемая стратегия удаления: %s", strategy)
	}

	var result entity.DeleteResult
	var parentID *int64
	err := uc.repo.InTx(ctx, func(tx repository.CategoryTx) error {
		node, err := tx.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		parentID = node.ParentID

		if err := tx.LockSiblings(ctx, node.ParentID); err != nil {
			return err
		}
		subtree, err := tx.Subtree(ctx, id)
		if err != nil {
			return err
		}
		ids := make([]int64, 0, len(subtree))
		for _, n := range subtree {
			ids = append(ids, n.ID)
		}

		if result.ClearedVideos, err = tx.ClearVideoCategories(ctx, ids); err != nil {
			return err
		}
		deleted, err := tx.DeleteCategories(ctx, ids)
		if err != nil {
			return err
		}
		result.DeletedCategories = int(deleted)

		siblings, err := tx.ListSiblings(ctx, node.ParentID)
		if err != nil {
			return err
		}
		return tx.UpdatePositions(ctx, siblingIDs(siblings))
	})
	if err != nil {
		return nil, storeError(err, "не удалось удалить категорию")
	}

	logger.WithCategory(id).WithFields(logrus.Fields{
		"deleted_categories": result.DeletedCategories,
		"cleared_videos":     result.ClearedVideos,
	}).Info("категория удалена")
	uc.events.emit(entity.CategoryDeleted, id, parentID)
	return &result, nil
}
