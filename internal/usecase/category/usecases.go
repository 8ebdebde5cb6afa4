package category

import (
	"errors"
	"sort"

	"github.com/ignatzorin/videomarket-backend/internal/domain/entity"
	"github.com/ignatzorin/videomarket-backend/internal/domain/repository"
	"github.com/ignatzorin/videomarket-backend/internal/pkg/apperror"
)

// Publisher получает события после успешного коммита.
type Publisher interface {
	Publish(event entity.CategoryEvent)
}

// Options настраивает сценарии дерева категорий.
type Options struct {
	// MaxDepth: максимальная глубина (корень = 1). Ноль означает entity.DefaultMaxDepth.
	MaxDepth  int
	Publisher Publisher
}

// UseCases собирает все сценарии работы с деревом.
type UseCases struct {
	ListChildren *ListChildrenUseCase
	ListFlat     *ListFlatUseCase
	GetCounts    *GetCountsUseCase
	Create       *CreateCategoryUseCase
	Rename       *RenameCategoryUseCase
	Move         *MoveCategoryUseCase
	Reorder      *ReorderCategoryUseCase
	Delete       *DeleteCategoryUseCase
	Seed         *SeedUseCase
}

func NewUseCases(repo repository.CategoryRepository, opts Options) *UseCases {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = entity.DefaultMaxDepth
	}
	events := eventSink{publisher: opts.Publisher}

	create := NewCreateCategoryUseCase(repo, opts.MaxDepth, events)
	return &UseCases{
		ListChildren: NewListChildrenUseCase(repo),
		ListFlat:     NewListFlatUseCase(repo),
		GetCounts:    NewGetCountsUseCase(repo),
		Create:       create,
		Rename:       NewRenameCategoryUseCase(repo, events),
		Move:         NewMoveCategoryUseCase(repo, opts.MaxDepth, events),
		Reorder:      NewReorderCategoryUseCase(repo, events),
		Delete:       NewDeleteCategoryUseCase(repo, events),
		Seed:         NewSeedUseCase(repo, create),
	}
}

// eventSink допускает отсутствие подписчика.
type eventSink struct {
	publisher Publisher
}

func (s eventSink) emit(eventType entity.CategoryEventType, categoryID int64, parentID *int64) {
	if s.publisher == nil {
		return
	}
	s.publisher.Publish(entity.NewCategoryEvent(eventType, categoryID, parentID))
}

// storeError оставляет типизированные ошибки как есть и заворачивает остальные в DATABASE_ERROR.
func storeError(err error, message string) error {
	if err == nil {
		return nil
	}
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return apperror.Wrap(err, apperror.ErrCodeDatabaseError, message)
}

// parentLookup подменяет «категория не найдена» на «родитель не найден».
func parentLookup(err error) error {
	if apperror.IsNotFound(err) {
		return apperror.ErrParentNotFound
	}
	return err
}

func siblingIDs(siblings []entity.Category) []int64 {
	ids := make([]int64, 0, len(siblings))
	for _, s := range siblings {
		ids = append(ids, s.ID)
	}
	return ids
}

// withoutID возвращает ids без id, сохраняя порядок.
func withoutID(ids []int64, id int64) []int64 {
	result := make([]int64, 0, len(ids))
	for _, v := range ids {
		if v != id {
			result = append(result, v)
		}
	}
	return result
}

func sortByPosition(categories []entity.Category) {
	sort.Slice(categories, func(i, j int) bool {
		if categories[i].Position != categories[j].Position {
			return categories[i].Position < categories[j].Position
		}
		return categories[i].ID < categories[j].ID
	})
}

// parentField делает parent_id читаемым в логах.
func parentField(parentID *int64) interface{} {
	if parentID == nil {
		return nil
	}
	return *parentID
}
