package category

import (
	"context"

	"github.com/ignatzorin/videomarket-backend/internal/domain/entity"
	"github.com/ignatzorin/videomarket-backend/internal/domain/repository"
	"github.com/ignatzorin/videomarket-backend/internal/logger"
	"github.com/ignatzorin/videomarket-backend/internal/pkg/apperror"
	"github.com/sirupsen/logrus"
)

type ListFlatUseCase struct {
	repo repository.CategoryRepository
}

func NewListFlatUseCase(repo repository.CategoryRepository) *ListFlatUseCase {
	return &ListFlatUseCase{repo: repo}
}

// Execute возвращает все категории в порядке обхода в глубину с хлебными крошками.
func (uc *ListFlatUseCase) Execute(ctx context.Context) ([]entity.FlatCategory, error) {
	all, err := uc.repo.ListAll(ctx)
	if err != nil {
		return nil, storeError(err, "не удалось получить список категорий")
	}
	return flatten(all)
}

// Tree возвращает вложенное представление дерева.
func (uc *ListFlatUseCase) Tree(ctx context.Context) ([]*entity.TreeNode, error) {
	flat, err := uc.Execute(ctx)
	if err != nil {
		return nil, err
	}
	return buildTree(flat), nil
}

func flatten(all []entity.Category) ([]entity.FlatCategory, error) {
	byID := make(map[int64]entity.Category, len(all))
	children := make(map[int64][]entity.Category)
	var roots []entity.Category
	for _, c := range all {
		byID[c.ID] = c
	}
	for _, c := range all {
		if c.ParentID == nil {
			roots = append(roots, c)
			continue
		}
		children[*c.ParentID] = append(children[*c.ParentID], c)
	}
	sortByPosition(roots)
	for parentID := range children {
		sortByPosition(children[parentID])
	}

	breadcrumbs := make(map[int64][]string, len(all))
	for _, c := range all {
		crumbs, err := breadcrumb(c, byID)
		if err != nil {
			return nil, err
		}
		breadcrumbs[c.ID] = crumbs
	}

	result := make([]entity.FlatCategory, 0, len(all))
	var walk func(nodes []entity.Category)
	walk = func(nodes []entity.Category) {
		for _, c := range nodes {
			result = append(result, entity.FlatCategory{Category: c, Breadcrumb: breadcrumbs[c.ID]})
			walk(children[c.ID])
		}
	}
	walk(roots)

	return result, nil
}

// breadcrumb поднимается по parent_id до корня. Повторный визит или
// отсутствующий родитель означают повреждённые данные.
func breadcrumb(c entity.Category, byID map[int64]entity.Category) ([]string, error) {
	var reversed []string
	visited := make(map[int64]struct{})
	current := c
	for {
		if _, seen := visited[current.ID]; seen {
			return nil, corruptTree(c.ID, "обнаружен цикл в дереве категорий")
		}
		visited[current.ID] = struct{}{}
		reversed = append(reversed, current.Name)

		if current.ParentID == nil {
			break
		}
		parent, ok := byID[*current.ParentID]
		if !ok {
			return nil, corruptTree(c.ID, "родитель категории отсутствует")
		}
		current = parent
	}

	crumbs := make([]string, len(reversed))
	for i, name := range reversed {
		crumbs[len(reversed)-1-i] = name
	}
	return crumbs, nil
}

func corruptTree(id int64, message string) error {
	logger.Log.WithFields(logrus.Fields{
		"category_id": id,
	}).Warn("повреждено дерево категорий: " + message)
	return apperror.New(apperror.ErrCodeCorruptTree, message)
}

func buildTree(flat []entity.FlatCategory) []*entity.TreeNode {
	nodes := make(map[int64]*entity.TreeNode, len(flat))
	roots := make([]*entity.TreeNode, 0)
	// flat уже в порядке обхода: родитель всегда встречается раньше детей
	for _, fc := range flat {
		node := &entity.TreeNode{FlatCategory: fc, Children: []*entity.TreeNode{}}
		nodes[fc.ID] = node
		if fc.ParentID == nil {
			roots = append(roots, node)
			continue
		}
		parent := nodes[*fc.ParentID]
		parent.Children = append(parent.Children, node)
	}
	return roots
}
