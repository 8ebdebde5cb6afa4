package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ignatzorin/videomarket-backend/internal/domain/entity"
	"github.com/ignatzorin/videomarket-backend/internal/domain/repository"
	"github.com/ignatzorin/videomarket-backend/internal/pkg/apperror"
	"github.com/ignatzorin/videomarket-backend/internal/repository/common"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// rootSiblingsLockKey задаёт ключ advisory-блокировки списка корневых категорий.
const rootSiblingsLockKey int64 = 0x63617465676f7279

// maxSubtreeLevels ограничивает рекурсию на случай повреждённых данных.
const maxSubtreeLevels = 64

const categoryColumns = `c.id, c.name, c.parent_id, c.position, c.depth, c.created_at, c.updated_at`

type categoryRow struct {
	ID            int64         `db:"id"`
	Name          string        `db:"name"`
	ParentID      sql.NullInt64 `db:"parent_id"`
	Position      int           `db:"position"`
	Depth         int           `db:"depth"`
	ChildrenCount int           `db:"children_count"`
	CreatedAt     time.Time     `db:"created_at"`
	UpdatedAt     time.Time     `db:"updated_at"`
}

func (r categoryRow) toEntity() entity.Category {
	c := entity.Category{
		ID:            r.ID,
		Name:          r.Name,
		Position:      r.Position,
		Depth:         r.Depth,
		ChildrenCount: r.ChildrenCount,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
	if r.ParentID.Valid {
		parentID := r.ParentID.Int64
		c.ParentID = &parentID
	}
	return c
}

func toEntities(rows []categoryRow) []entity.Category {
	result := make([]entity.Category, 0, len(rows))
	for _, row := range rows {
		result = append(result, row.toEntity())
	}
	return result
}

func nullableID(id *int64) sql.NullInt64 {
	if id == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *id, Valid: true}
}

// CategoryRepositoryAdapter хранит дерево категорий в PostgreSQL.
type CategoryRepositoryAdapter struct {
	db *sqlx.DB
}

func NewCategoryRepositoryAdapter(db *sqlx.DB) *CategoryRepositoryAdapter {
	return &CategoryRepositoryAdapter{db: db}
}

var _ repository.CategoryRepository = (*CategoryRepositoryAdapter)(nil)

func (r *CategoryRepositoryAdapter) ListChildren(ctx context.Context, parentID *int64) ([]entity.Category, error) {
	query := `
		SELECT ` + categoryColumns + `,
		       (SELECT COUNT(*) FROM categories ch WHERE ch.parent_id = c.id) AS children_count
		FROM categories c
		WHERE c.parent_id IS NOT DISTINCT FROM $1::bigint
		ORDER BY c.position, c.id
	`

	var rows []categoryRow
	if err := r.db.SelectContext(ctx, &rows, query, nullableID(parentID)); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить список категорий")
	}
	return toEntities(rows), nil
}

func (r *CategoryRepositoryAdapter) ListAll(ctx context.Context) ([]entity.Category, error) {
	query := `
		SELECT ` + categoryColumns + `,
		       COUNT(ch.id) AS children_count
		FROM categories c
		LEFT JOIN categories ch ON ch.parent_id = c.id
		GROUP BY c.id
		ORDER BY c.depth, c.parent_id NULLS FIRST, c.position, c.id
	`

	var rows []categoryRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить список категорий")
	}
	return toEntities(rows), nil
}

func (r *CategoryRepositoryAdapter) FindByID(ctx context.Context, id int64) (*entity.Category, error) {
	query := `
		SELECT ` + categoryColumns + `,
		       (SELECT COUNT(*) FROM categories ch WHERE ch.parent_id = c.id) AS children_count
		FROM categories c
		WHERE c.id = $1
	`

	var row categoryRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.ErrCategoryNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить категорию")
	}
	c := row.toEntity()
	return &c, nil
}

// InTx открывает SERIALIZABLE-транзакцию. Конфликты сериализации и нарушения
// ограничений превращаются в CONFLICT.
func (r *CategoryRepositoryAdapter) InTx(ctx context.Context, fn func(tx repository.CategoryTx) error) error {
	return common.WithTransaction(ctx, r.db, common.SerializableTx, func(tx *sqlx.Tx) error {
		return fn(&categoryTx{tx: tx})
	})
}

// AddVideo вставляет видео. Используется сидером и тестами.
func (r *CategoryRepositoryAdapter) AddVideo(ctx context.Context, title string, categoryID *int64) (int64, error) {
	var id int64
	err := r.db.GetContext(ctx, &id,
		`INSERT INTO videos (title, category_id) VALUES ($1, $2) RETURNING id`,
		title, nullableID(categoryID))
	if err != nil {
		return 0, common.MapError(err)
	}
	return id, nil
}

type categoryTx struct {
	tx *sqlx.Tx
}

func (t *categoryTx) get(ctx context.Context, id int64, suffix string) (*entity.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories c WHERE c.id = $1` + suffix

	var row categoryRow
	if err := t.tx.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.ErrCategoryNotFound
		}
		return nil, fmt.Errorf("get category %d: %w", id, err)
	}
	c := row.toEntity()
	return &c, nil
}

func (t *categoryTx) Get(ctx context.Context, id int64) (*entity.Category, error) {
	return t.get(ctx, id, "")
}

func (t *categoryTx) GetForUpdate(ctx context.Context, id int64) (*entity.Category, error) {
	return t.get(ctx, id, " FOR UPDATE")
}

// LockPath поднимается от id к корню, блокируя каждую строку.
// Рекурсивный CTE не допускает FOR UPDATE, поэтому цепочка читается по одной строке.
func (t *categoryTx) LockPath(ctx context.Context, id int64) ([]entity.Category, error) {
	var path []entity.Category
	visited := make(map[int64]struct{})
	current := id
	for {
		if _, seen := visited[current]; seen {
			return nil, apperror.New(apperror.ErrCodeCorruptTree, "обнаружен цикл в дереве категорий")
		}
		visited[current] = struct{}{}

		c, err := t.GetForUpdate(ctx, current)
		if err != nil {
			if apperror.IsNotFound(err) && len(path) > 0 {
				return nil, apperror.New(apperror.ErrCodeCorruptTree, "родитель категории отсутствует")
			}
			return nil, err
		}
		path = append(path, *c)
		if c.ParentID == nil {
			return path, nil
		}
		current = *c.ParentID
	}
}

func (t *categoryTx) LockSiblings(ctx context.Context, parentID *int64) error {
	if parentID == nil {
		if _, err := t.tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, rootSiblingsLockKey); err != nil {
			return fmt.Errorf("lock root categories: %w", err)
		}
		return nil
	}

	var locked int64
	err := t.tx.GetContext(ctx, &locked, `SELECT id FROM categories WHERE id = $1 FOR UPDATE`, *parentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperror.ErrCategoryNotFound
		}
		return fmt.Errorf("lock category %d: %w", *parentID, err)
	}
	return nil
}

func (t *categoryTx) Subtree(ctx context.Context, id int64) ([]entity.SubtreeNode, error) {
	query := `
		WITH RECURSIVE sub AS (
			SELECT id, 0 AS level FROM categories WHERE id = $1
			UNION ALL
			SELECT c.id, s.level + 1
			FROM categories c
			JOIN sub s ON c.parent_id = s.id
			WHERE s.level < $2
		)
		SELECT id, level FROM sub ORDER BY level, id
	`

	var rows []struct {
		ID    int64 `db:"id"`
		Level int   `db:"level"`
	}
	if err := t.tx.SelectContext(ctx, &rows, query, id, maxSubtreeLevels); err != nil {
		return nil, fmt.Errorf("load subtree %d: %w", id, err)
	}
	if len(rows) == 0 {
		return nil, apperror.ErrCategoryNotFound
	}

	nodes := make([]entity.SubtreeNode, 0, len(rows))
	for _, row := range rows {
		if row.Level >= maxSubtreeLevels {
			return nil, apperror.New(apperror.ErrCodeCorruptTree, "обнаружен цикл в дереве категорий")
		}
		nodes = append(nodes, entity.SubtreeNode{ID: row.ID, Level: row.Level})
	}
	return nodes, nil
}

func (t *categoryTx) ListSiblings(ctx context.Context, parentID *int64) ([]entity.Category, error) {
	query := `
		SELECT ` + categoryColumns + `
		FROM categories c
		WHERE c.parent_id IS NOT DISTINCT FROM $1::bigint
		ORDER BY c.position, c.id
	`

	var rows []categoryRow
	if err := t.tx.SelectContext(ctx, &rows, query, nullableID(parentID)); err != nil {
		return nil, fmt.Errorf("list siblings: %w", err)
	}
	return toEntities(rows), nil
}

func (t *categoryTx) CountVideos(ctx context.Context, categoryIDs []int64) (int, error) {
	if len(categoryIDs) == 0 {
		return 0, nil
	}

	var count int
	err := t.tx.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM videos WHERE category_id = ANY($1)`, pq.Array(categoryIDs))
	if err != nil {
		return 0, fmt.Errorf("count videos: %w", err)
	}
	return count, nil
}

func (t *categoryTx) Insert(ctx context.Context, category *entity.Category) error {
	query := `
		INSERT INTO categories (name, parent_id, position, depth)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`

	row := t.tx.QueryRowxContext(ctx, query,
		category.Name,
		nullableID(category.ParentID),
		category.Position,
		category.Depth,
	)
	if err := row.Scan(&category.ID, &category.CreatedAt, &category.UpdatedAt); err != nil {
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

func (t *categoryTx) exec(ctx context.Context, op string, query string, args ...interface{}) (int64, error) {
	res, err := t.tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return affected, nil
}

func (t *categoryTx) UpdateName(ctx context.Context, id int64, name string) error {
	affected, err := t.exec(ctx, "rename category",
		`UPDATE categories SET name = $2, updated_at = NOW() WHERE id = $1`, id, name)
	if err != nil {
		return err
	}
	if affected == 0 {
		return apperror.ErrCategoryNotFound
	}
	return nil
}

func (t *categoryTx) UpdatePlacement(ctx context.Context, id int64, parentID *int64, position int) error {
	affected, err := t.exec(ctx, "move category",
		`UPDATE categories SET parent_id = $2, position = $3, updated_at = NOW() WHERE id = $1`,
		id, nullableID(parentID), position)
	if err != nil {
		return err
	}
	if affected == 0 {
		return apperror.ErrCategoryNotFound
	}
	return nil
}

func (t *categoryTx) UpdateDepths(ctx context.Context, depths map[int64]int) error {
	if len(depths) == 0 {
		return nil
	}

	ids := make([]int64, 0, len(depths))
	values := make([]int64, 0, len(depths))
	for id, depth := range depths {
		ids = append(ids, id)
		values = append(values, int64(depth))
	}

	_, err := t.exec(ctx, "update depths", `
		UPDATE categories c
		SET depth = v.depth, updated_at = NOW()
		FROM unnest($1::bigint[], $2::int[]) AS v(id, depth)
		WHERE c.id = v.id AND c.depth <> v.depth
	`, pq.Array(ids), pq.Array(values))
	return err
}

// UpdatePositions полагается на DEFERRABLE-ограничение уникальности позиций.
func (t *categoryTx) UpdatePositions(ctx context.Context, orderedIDs []int64) error {
	if len(orderedIDs) == 0 {
		return nil
	}

	_, err := t.exec(ctx, "update positions", `
		UPDATE categories c
		SET position = v.ord - 1, updated_at = NOW()
		FROM unnest($1::bigint[]) WITH ORDINALITY AS v(id, ord)
		WHERE c.id = v.id AND c.position <> v.ord - 1
	`, pq.Array(orderedIDs))
	return err
}

func (t *categoryTx) ClearVideoCategories(ctx context.Context, categoryIDs []int64) (int64, error) {
	if len(categoryIDs) == 0 {
		return 0, nil
	}
	return t.exec(ctx, "clear video categories",
		`UPDATE videos SET category_id = NULL WHERE category_id = ANY($1)`, pq.Array(categoryIDs))
}

func (t *categoryTx) DeleteCategories(ctx context.Context, categoryIDs []int64) (int64, error) {
	if len(categoryIDs) == 0 {
		return 0, nil
	}
	return t.exec(ctx, "delete categories",
		`DELETE FROM categories WHERE id = ANY($1)`, pq.Array(categoryIDs))
}
