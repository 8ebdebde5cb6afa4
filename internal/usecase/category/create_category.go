package category

import (
	"context"

	"github.com/ignatzorin/videomarket-backend/internal/domain/entity"
	"github.com/ignatzorin/videomarket-backend/internal/domain/repository"
	"github.com/ignatzorin/videomarket-backend/internal/logger"
	"github.com/ignatzorin/videomarket-backend/internal/pkg/apperror"
)

type CreateCategoryInput struct {
	Name     string
	ParentID *int64
}

type CreateCategoryUseCase struct {
	repo     repository.CategoryRepository
	maxDepth int
	events   eventSink
}

func NewCreateCategoryUseCase(repo repository.CategoryRepository, maxDepth int, events eventSink) *CreateCategoryUseCase {
	return &CreateCategoryUseCase{repo: repo, maxDepth: maxDepth, events: events}
}

// Execute добавляет категорию в конец списка детей parentID.
func (uc *CreateCategoryUseCase) Execute(ctx context.Context, input CreateCategoryInput) (*entity.Category, error) {
	name, err := entity.NormalizeCategoryName(input.Name)
	if err != nil {
		return nil, err
	}

	var created *entity.Category
	err = uc.repo.InTx(ctx, func(tx repository.CategoryTx) error {
		depth := 1
		if input.ParentID != nil {
			// Блокировка пути защищает от параллельного переноса предка
			path, err := tx.LockPath(ctx, *input.ParentID)
			if err != nil {
				return parentLookup(err)
			}
			depth = len(path) + 1
		} else if err := tx.LockSiblings(ctx, nil); err != nil {
			return err
		}

		siblings, err := tx.ListSiblings(ctx, input.ParentID)
		if err != nil {
			return err
		}
		if entity.FindSiblingByName(siblings, name, 0) != nil {
			return duplicateName(name)
		}

		category, err := entity.NewCategory(name, input.ParentID, len(siblings), depth, uc.maxDepth)
		if err != nil {
			return err
		}
		if err := tx.Insert(ctx, category); err != nil {
			return err
		}
		created = category
		return nil
	})
	if err != nil {
		return nil, storeError(err, "не удалось создать категорию")
	}

	logger.WithCategory(created.ID).WithField("depth", created.Depth).Info("категория создана")
	uc.events.emit(entity.CategoryCreated, created.ID, created.ParentID)
	return created, nil
}

func duplicateName(name string) error {
	return apperror.Validation("категория %q уже существует на этом уровне", name)
}
