package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ignatzorin/videomarket-backend/internal/domain/entity"
	"github.com/ignatzorin/videomarket-backend/internal/domain/repository"
	"github.com/ignatzorin/videomarket-backend/internal/pkg/apperror"
)

// CategoryRepository хранит дерево категорий в памяти процесса.
// Транзакции выполняются над копией состояния и подменяют его только при успехе.
type CategoryRepository struct {
	mu    sync.RWMutex
	state *state
}

type state struct {
	categories  map[int64]entity.Category
	videos      map[int64]*int64
	nextID      int64
	nextVideoID int64
}

// NewCategoryRepository создаёт пустое хранилище.
func NewCategoryRepository() *CategoryRepository {
	return &CategoryRepository{
		state: &state{
			categories: make(map[int64]entity.Category),
			videos:     make(map[int64]*int64),
		},
	}
}

var _ repository.CategoryRepository = (*CategoryRepository)(nil)

// ListChildren возвращает детей parentID с children_count.
func (r *CategoryRepository) ListChildren(ctx context.Context, parentID *int64) ([]entity.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.state.withChildrenCount(r.state.siblings(parentID)), nil
}

// ListAll возвращает все категории, упорядоченные по depth, parent_id и position.
func (r *CategoryRepository) ListAll(ctx context.Context) ([]entity.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]entity.Category, 0, len(r.state.categories))
	for _, c := range r.state.categories {
		all = append(all, copyCategory(c))
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Depth != all[j].Depth {
			return all[i].Depth < all[j].Depth
		}
		pi, pj := parentKey(all[i].ParentID), parentKey(all[j].ParentID)
		if pi != pj {
			return pi < pj
		}
		if all[i].Position != all[j].Position {
			return all[i].Position < all[j].Position
		}
		return all[i].ID < all[j].ID
	})
	return r.state.withChildrenCount(all), nil
}

func (r *CategoryRepository) FindByID(ctx context.Context, id int64) (*entity.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.state.categories[id]
	if !ok {
		return nil, apperror.ErrCategoryNotFound
	}
	withCount := r.state.withChildrenCount([]entity.Category{copyCategory(c)})
	return &withCount[0], nil
}

// InTx выполняет fn над копией состояния. Транзакции сериализуются мьютексом.
func (r *CategoryRepository) InTx(ctx context.Context, fn func(tx repository.CategoryTx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	working := r.state.clone()
	if err := fn(&categoryTx{state: working}); err != nil {
		return err
	}
	if err := working.checkConstraints(); err != nil {
		return err
	}

	r.state = working
	return nil
}

// AddVideo регистрирует видео с категорией (nil означает без категории) и возвращает его id.
func (r *CategoryRepository) AddVideo(categoryID *int64) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.state.nextVideoID++
	r.state.videos[r.state.nextVideoID] = copyID(categoryID)
	return r.state.nextVideoID
}

// VideoCategory возвращает категорию видео; ok=false, если видео не существует.
func (r *CategoryRepository) VideoCategory(videoID int64) (*int64, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	categoryID, ok := r.state.videos[videoID]
	return copyID(categoryID), ok
}

// categoryTx реализует repository.CategoryTx поверх рабочей копии.
type categoryTx struct {
	state *state
}

func (t *categoryTx) Get(ctx context.Context, id int64) (*entity.Category, error) {
	c, ok := t.state.categories[id]
	if !ok {
		return nil, apperror.ErrCategoryNotFound
	}
	cp := copyCategory(c)
	return &cp, nil
}

func (t *categoryTx) GetForUpdate(ctx context.Context, id int64) (*entity.Category, error) {
	return t.Get(ctx, id)
}

func (t *categoryTx) LockPath(ctx context.Context, id int64) ([]entity.Category, error) {
	var path []entity.Category
	visited := make(map[int64]struct{})
	current := &id
	for current != nil {
		if _, seen := visited[*current]; seen {
			return nil, apperror.New(apperror.ErrCodeCorruptTree, "обнаружен цикл в дереве категорий")
		}
		visited[*current] = struct{}{}

		c, ok := t.state.categories[*current]
		if !ok {
			if len(path) == 0 {
				return nil, apperror.ErrCategoryNotFound
			}
			return nil, apperror.New(apperror.ErrCodeCorruptTree, "родитель категории отсутствует")
		}
		path = append(path, copyCategory(c))
		current = c.ParentID
	}
	return path, nil
}

func (t *categoryTx) LockSiblings(ctx context.Context, parentID *int64) error {
	if parentID == nil {
		return nil
	}
	if _, ok := t.state.categories[*parentID]; !ok {
		return apperror.ErrCategoryNotFound
	}
	return nil
}

func (t *categoryTx) Subtree(ctx context.Context, id int64) ([]entity.SubtreeNode, error) {
	if _, ok := t.state.categories[id]; !ok {
		return nil, apperror.ErrCategoryNotFound
	}

	children := t.state.childrenIndex()
	nodes := []entity.SubtreeNode{{ID: id, Level: 0}}
	visited := map[int64]struct{}{id: {}}
	for i := 0; i < len(nodes); i++ {
		for _, childID := range children[nodes[i].ID] {
			if _, seen := visited[childID]; seen {
				return nil, apperror.New(apperror.ErrCodeCorruptTree, "обнаружен цикл в дереве категорий")
			}
			visited[childID] = struct{}{}
			nodes = append(nodes, entity.SubtreeNode{ID: childID, Level: nodes[i].Level + 1})
		}
	}
	return nodes, nil
}

func (t *categoryTx) ListSiblings(ctx context.Context, parentID *int64) ([]entity.Category, error) {
	return t.state.siblings(parentID), nil
}

func (t *categoryTx) CountVideos(ctx context.Context, categoryIDs []int64) (int, error) {
	set := idSet(categoryIDs)
	count := 0
	for _, categoryID := range t.state.videos {
		if categoryID == nil {
			continue
		}
		if _, ok := set[*categoryID]; ok {
			count++
		}
	}
	return count, nil
}

func (t *categoryTx) Insert(ctx context.Context, category *entity.Category) error {
	if category.ParentID != nil {
		if _, ok := t.state.categories[*category.ParentID]; !ok {
			return apperror.ErrConcurrentChange
		}
	}

	t.state.nextID++
	category.ID = t.state.nextID
	now := time.Now()
	category.CreatedAt = now
	category.UpdatedAt = now
	category.ChildrenCount = 0

	stored := copyCategory(*category)
	t.state.categories[stored.ID] = stored
	return nil
}

func (t *categoryTx) UpdateName(ctx context.Context, id int64, name string) error {
	return t.update(id, func(c *entity.Category) {
		c.Name = name
	})
}

func (t *categoryTx) UpdatePlacement(ctx context.Context, id int64, parentID *int64, position int) error {
	return t.update(id, func(c *entity.Category) {
		c.ParentID = copyID(parentID)
		c.Position = position
	})
}

func (t *categoryTx) UpdateDepths(ctx context.Context, depths map[int64]int) error {
	for id, depth := range depths {
		if err := t.update(id, func(c *entity.Category) { c.Depth = depth }); err != nil {
			return err
		}
	}
	return nil
}

func (t *categoryTx) UpdatePositions(ctx context.Context, orderedIDs []int64) error {
	for position, id := range orderedIDs {
		if err := t.update(id, func(c *entity.Category) { c.Position = position }); err != nil {
			return err
		}
	}
	return nil
}

func (t *categoryTx) ClearVideoCategories(ctx context.Context, categoryIDs []int64) (int64, error) {
	set := idSet(categoryIDs)
	var cleared int64
	for videoID, categoryID := range t.state.videos {
		if categoryID == nil {
			continue
		}
		if _, ok := set[*categoryID]; ok {
			t.state.videos[videoID] = nil
			cleared++
		}
	}
	return cleared, nil
}

func (t *categoryTx) DeleteCategories(ctx context.Context, categoryIDs []int64) (int64, error) {
	var deleted int64
	for _, id := range categoryIDs {
		if _, ok := t.state.categories[id]; ok {
			delete(t.state.categories, id)
			deleted++
		}
	}
	return deleted, nil
}

func (t *categoryTx) update(id int64, fn func(c *entity.Category)) error {
	c, ok := t.state.categories[id]
	if !ok {
		return apperror.ErrCategoryNotFound
	}
	fn(&c)
	c.UpdatedAt = time.Now()
	t.state.categories[id] = c
	return nil
}

func (s *state) clone() *state {
	cp := &state{
		categories:  make(map[int64]entity.Category, len(s.categories)),
		videos:      make(map[int64]*int64, len(s.videos)),
		nextID:      s.nextID,
		nextVideoID: s.nextVideoID,
	}
	for id, c := range s.categories {
		cp.categories[id] = copyCategory(c)
	}
	for id, categoryID := range s.videos {
		cp.videos[id] = copyID(categoryID)
	}
	return cp
}

func (s *state) siblings(parentID *int64) []entity.Category {
	var result []entity.Category
	for _, c := range s.categories {
		if entity.SameParentID(c.ParentID, parentID) {
			result = append(result, copyCategory(c))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Position != result[j].Position {
			return result[i].Position < result[j].Position
		}
		return result[i].ID < result[j].ID
	})
	return result
}

func (s *state) childrenIndex() map[int64][]int64 {
	index := make(map[int64][]int64)
	for _, c := range s.categories {
		if c.ParentID != nil {
			index[*c.ParentID] = append(index[*c.ParentID], c.ID)
		}
	}
	for parentID := range index {
		ids := index[parentID]
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	}
	return index
}

func (s *state) withChildrenCount(categories []entity.Category) []entity.Category {
	counts := make(map[int64]int)
	for _, c := range s.categories {
		if c.ParentID != nil {
			counts[*c.ParentID]++
		}
	}
	for i := range categories {
		categories[i].ChildrenCount = counts[categories[i].ID]
	}
	return categories
}

// checkConstraints повторяет ограничения схемы Postgres, проверяемые при коммите.
func (s *state) checkConstraints() error {
	type positionKey struct {
		parent   int64
		position int
	}
	type nameKey struct {
		parent int64
		name   string
	}
	positions := make(map[positionKey]struct{})
	names := make(map[nameKey]struct{})

	for _, c := range s.categories {
		if c.ParentID != nil {
			if *c.ParentID == c.ID {
				return apperror.ErrConcurrentChange
			}
			if _, ok := s.categories[*c.ParentID]; !ok {
				return apperror.ErrConcurrentChange
			}
		}

		parent := parentKey(c.ParentID)
		pk := positionKey{parent: parent, position: c.Position}
		if _, dup := positions[pk]; dup {
			return apperror.ErrConcurrentChange
		}
		positions[pk] = struct{}{}

		nk := nameKey{parent: parent, name: strings.ToLower(c.Name)}
		if _, dup := names[nk]; dup {
			return apperror.ErrConcurrentChange
		}
		names[nk] = struct{}{}
	}

	for _, categoryID := range s.videos {
		if categoryID != nil {
			if _, ok := s.categories[*categoryID]; !ok {
				return apperror.ErrConcurrentChange
			}
		}
	}
	return nil
}

func parentKey(parentID *int64) int64 {
	if parentID == nil {
		return 0
	}
	return *parentID
}

func copyID(id *int64) *int64 {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}

func copyCategory(c entity.Category) entity.Category {
	c.ParentID = copyID(c.ParentID)
	return c
}

func idSet(ids []int64) map[int64]struct{} {
	set := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
