package category

import (
	"context"

	"github.com/ignatzorin/videomarket-backend/internal/domain/entity"
	"github.com/ignatzorin/videomarket-backend/internal/domain/repository"
	"github.com/ignatzorin/videomarket-backend/internal/logger"
	"github.com/ignatzorin/videomarket-backend/internal/pkg/apperror"
	"github.com/sirupsen/logrus"
)

type MoveCategoryUseCase struct {
	repo     repository.CategoryRepository
	maxDepth int
	events   eventSink
}

func NewMoveCategoryUseCase(repo repository.CategoryRepository, maxDepth int, events eventSink) *MoveCategoryUseCase {
	return &MoveCategoryUseCase{repo: repo, maxDepth: maxDepth, events: events}
}

// Execute переносит категорию вместе с поддеревом в конец списка детей newParentID.
func (uc *MoveCategoryUseCase) Execute(ctx context.Context, id int64, newParentID *int64) (*entity.Category, error) {
	if newParentID != nil && *newParentID == id {
		return nil, apperror.ErrCategoryCycle
	}

	var moved *entity.Category
	var oldParentID *int64
	changed := false
	err := uc.repo.InTx(ctx, func(tx repository.CategoryTx) error {
		node, err := tx.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		moved = node
		oldParentID = node.ParentID
		if entity.SameParentID(node.ParentID, newParentID) {
			return nil
		}

		newDepth := 1
		if newParentID != nil {
			path, err := tx.LockPath(ctx, *newParentID)
			if err != nil {
				return parentLookup(err)
			}
			for _, ancestor := range path {
				if ancestor.ID == id {
					return apperror.ErrCategoryCycle
				}
			}
			newDepth = len(path) + 1
		}

		subtree, err := tx.Subtree(ctx, id)
		if err != nil {
			return err
		}
		if newDepth+entity.SubtreeHeight(subtree) > uc.maxDepth {
			return apperror.DepthExceeded(uc.maxDepth)
		}

		if err := lockSiblingGroups(ctx, tx, node.ParentID, newParentID); err != nil {
			return err
		}
		newSiblings, err := tx.ListSiblings(ctx, newParentID)
		if err != nil {
			return err
		}
		if entity.FindSiblingByName(newSiblings, node.Name, id) != nil {
			return duplicateName(node.Name)
		}
		oldSiblings, err := tx.ListSiblings(ctx, node.ParentID)
		if err != nil {
			return err
		}

		// Все проверки пройдены, дальше только записи
		if err := tx.UpdatePlacement(ctx, id, newParentID, len(newSiblings)); err != nil {
			return err
		}
		if err := tx.UpdatePositions(ctx, withoutID(siblingIDs(oldSiblings), id)); err != nil {
			return err
		}
		depths := make(map[int64]int, len(subtree))
		for _, n := range subtree {
			depths[n.ID] = newDepth + n.Level
		}
		if err := tx.UpdateDepths(ctx, depths); err != nil {
			return err
		}

		node.ParentID = newParentID
		node.Position = len(newSiblings)
		node.Depth = newDepth
		changed = true
		return nil
	})
	if err != nil {
		return nil, storeError(err, "не удалось переместить категорию")
	}

	if changed {
		logger.WithCategory(id).WithFields(logrus.Fields{
			"old_parent_id": parentField(oldParentID),
			"new_parent_id": parentField(newParentID),
		}).Info("категория перемещена")
		uc.events.emit(entity.CategoryMoved, id, newParentID)
	}
	return reload(ctx, uc.repo, moved), nil
}

// lockSiblingGroups блокирует два списка детей в едином порядке: сначала корневой, затем по возрастанию id.
func lockSiblingGroups(ctx context.Context, tx repository.CategoryTx, a, b *int64) error {
	first, second := a, b
	if first != nil && (second == nil || *second < *first) {
		first, second = second, first
	}
	if err := tx.LockSiblings(ctx, first); err != nil {
		return parentLookup(err)
	}
	if entity.SameParentID(first, second) {
		return nil
	}
	return parentLookup(tx.LockSiblings(ctx, second))
}
