package category

import (
	"context"

	"github.com/ignatzorin/videomarket-backend/internal/domain/entity"
	"github.com/ignatzorin/videomarket-backend/internal/domain/repository"
)

type ListChildrenUseCase struct {
	repo repository.CategoryRepository
}

func NewListChildrenUseCase(repo repository.CategoryRepository) *ListChildrenUseCase {
	return &ListChildrenUseCase{repo: repo}
}

// Execute возвращает прямых потомков parentID (nil означает корни) в порядке position.
func (uc *ListChildrenUseCase) Execute(ctx context.Context, parentID *int64) ([]entity.Category, error) {
	if parentID != nil {
		if _, err := uc.repo.FindByID(ctx, *parentID); err != nil {
			return nil, storeError(parentLookup(err), "не удалось получить категорию")
		}
	}

	children, err := uc.repo.ListChildren(ctx, parentID)
	if err != nil {
		return nil, storeError(err, "не удалось получить список категорий")
	}
	if children == nil {
		children = []entity.Category{}
	}
	return children, nil
}
