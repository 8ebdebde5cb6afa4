package repository

import (
	"context"

	"github.com/ignatzorin/videomarket-backend/internal/domain/entity"
)

// CategoryRepository является единственной точкой записи иерархических полей категорий.
type CategoryRepository interface {
	// ListChildren возвращает прямых потомков parentID (nil означает корни), упорядоченных по position.
	ListChildren(ctx context.Context, parentID *int64) ([]entity.Category, error)
	// ListAll возвращает все категории с children_count.
	ListAll(ctx context.Context) ([]entity.Category, error)
	FindByID(ctx context.Context, id int64) (*entity.Category, error)

	// InTx выполняет fn в одной транзакции. Любая ошибка fn откатывает все изменения.
	InTx(ctx context.Context, fn func(tx CategoryTx) error) error
}

// CategoryTx описывает операции, доступные внутри транзакции дерева.
type CategoryTx interface {
	Get(ctx context.Context, id int64) (*entity.Category, error)
	// GetForUpdate читает категорию с блокировкой строки.
	GetForUpdate(ctx context.Context, id int64) (*entity.Category, error)
	// LockPath блокирует цепочку от id до корня и возвращает её в этом порядке.
	LockPath(ctx context.Context, id int64) ([]entity.Category, error)
	// LockSiblings сериализует изменения списка детей parentID.
	LockSiblings(ctx context.Context, parentID *int64) error

	// Subtree возвращает id и все его потомки с уровнем относительно id.
	Subtree(ctx context.Context, id int64) ([]entity.SubtreeNode, error)
	// ListSiblings возвращает детей parentID, упорядоченных по position.
	ListSiblings(ctx context.Context, parentID *int64) ([]entity.Category, error)
	CountVideos(ctx context.Context, categoryIDs []int64) (int, error)

	Insert(ctx context.Context, category *entity.Category) error
	UpdateName(ctx context.Context, id int64, name string) error
	UpdatePlacement(ctx context.Context, id int64, parentID *int64, position int) error
	UpdateDepths(ctx context.Context, depths map[int64]int) error
	// UpdatePositions присваивает orderedIDs[i] позицию i.
	UpdatePositions(ctx context.Context, orderedIDs []int64) error
	ClearVideoCategories(ctx context.Context, categoryIDs []int64) (int64, error)
	DeleteCategories(ctx context.Context, categoryIDs []int64) (int64, error)
}
