package category

import (
	"context"

	"github.com/ignatzorin/videomarket-backend/internal/domain/entity"
	"github.com/ignatzorin/videomarket-backend/internal/domain/repository"
	"github.com/ignatzorin/videomarket-backend/internal/logger"
)

// seedNode описывает узел демонстрационного дерева.
type seedNode struct {
	name     string
	children []seedNode
}

var demoTree = []seedNode{
	{name: "Обучение", children: []seedNode{
		{name: "Программирование", children: []seedNode{
			{name: "Go"},
			{name: "JavaScript"},
		}},
		{name: "Дизайн"},
	}},
	{name: "Развлечения", children: []seedNode{
		{name: "Музыка", children: []seedNode{
			{name: "Концерты"},
		}},
		{name: "Игры"},
	}},
	{name: "Спорт"},
}

type SeedResult struct {
	Seeded     bool
	Categories []entity.Category
}

type SeedUseCase struct {
	repo   repository.CategoryRepository
	create *CreateCategoryUseCase
}

func NewSeedUseCase(repo repository.CategoryRepository, create *CreateCategoryUseCase) *SeedUseCase {
	return &SeedUseCase{repo: repo, create: create}
}

// Execute заполняет пустое хранилище демонстрационным деревом. Непустое хранилище не трогает.
func (uc *SeedUseCase) Execute(ctx context.Context) (*SeedResult, error) {
	existing, err := uc.repo.ListAll(ctx)
	if err != nil {
		return nil, storeError(err, "не удалось получить список категорий")
	}
	if len(existing) > 0 {
		return &SeedResult{Seeded: false, Categories: existing}, nil
	}

	result := &SeedResult{Seeded: true}
	var plant func(nodes []seedNode, parentID *int64) error
	plant = func(nodes []seedNode, parentID *int64) error {
		for _, n := range nodes {
			created, err := uc.create.Execute(ctx, CreateCategoryInput{Name: n.name, ParentID: parentID})
			if err != nil {
				return err
			}
			result.Categories = append(result.Categories, *created)
			id := created.ID
			if err := plant(n.children, &id); err != nil {
				return err
			}
		}
		return nil
	}
	if err := plant(demoTree, nil); err != nil {
		return nil, err
	}

	logger.Log.WithField("categories", len(result.Categories)).Info("демонстрационное дерево категорий создано")
	return result, nil
}
