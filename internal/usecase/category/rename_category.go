package category

import (
	"context"

	"github.com/ignatzorin/videomarket-backend/internal/domain/entity"
	"github.com/ignatzorin/videomarket-backend/internal/domain/repository"
	"github.com/ignatzorin/videomarket-backend/internal/logger"
)

type RenameCategoryUseCase struct {
	repo   repository.CategoryRepository
	events eventSink
}

func NewRenameCategoryUseCase(repo repository.CategoryRepository, events eventSink) *RenameCategoryUseCase {
	return &RenameCategoryUseCase{repo: repo, events: events}
}

func (uc *RenameCategoryUseCase) Execute(ctx context.Context, id int64, newName string) (*entity.Category, error) {
	name, err := entity.NormalizeCategoryName(newName)
	if err != nil {
		return nil, err
	}

	var renamed *entity.Category
	changed := false
	err = uc.repo.InTx(ctx, func(tx repository.CategoryTx) error {
		category, err := tx.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		renamed = category
		if category.Name == name {
			return nil
		}

		if err := tx.LockSiblings(ctx, category.ParentID); err != nil {
			return err
		}
		siblings, err := tx.ListSiblings(ctx, category.ParentID)
		if err != nil {
			return err
		}
		if entity.FindSiblingByName(siblings, name, id) != nil {
			return duplicateName(name)
		}

		if err := tx.UpdateName(ctx, id, name); err != nil {
			return err
		}
		category.Name = name
		changed = true
		return nil
	})
	if err != nil {
		return nil, storeError(err, "не удалось переименовать категорию")
	}

	if changed {
		logger.WithCategory(id).Info("категория переименована")
		uc.events.emit(entity.CategoryRenamed, id, renamed.ParentID)
	}
	return reload(ctx, uc.repo, renamed), nil
}

// reload перечитывает категорию после коммита, чтобы вернуть актуальный children_count.
func reload(ctx context.Context, repo repository.CategoryRepository, c *entity.Category) *entity.Category {
	fresh, err := repo.FindByID(ctx, c.ID)
	if err != nil {
		return c
	}
	return fresh
}
