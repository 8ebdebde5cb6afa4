package entity

import (
	"strings"
	"time"

	"github.com/ignatzorin/videomarket-backend/internal/pkg/apperror"
	"github.com/ignatzorin/videomarket-backend/internal/validation"
)

// DefaultMaxDepth задаёт максимальную вложенность дерева категорий (корень = 1).
const DefaultMaxDepth = 5

// Category это узел леса категорий, которыми помечаются видео.
type Category struct {
	ID            int64
	Name          string
	ParentID      *int64
	Position      int
	Depth         int
	ChildrenCount int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// SubtreeNode описывает элемент поддерева с уровнем относительно его корня (корень = 0).
type SubtreeNode struct {
	ID    int64
	Level int
}

// Counts содержит сводку последствий перед удалением или переносом.
type Counts struct {
	Children      int
	Descendants   int
	Videos        int
	SubtreeVideos int
}

// FlatCategory описывает категорию плоского списка с хлебными крошками.
type FlatCategory struct {
	Category
	Breadcrumb []string
}

// Path возвращает хлебные крошки одной строкой.
func (f FlatCategory) Path() string {
	return strings.Join(f.Breadcrumb, " / ")
}

// TreeNode описывает вложенное представление дерева.
type TreeNode struct {
	FlatCategory
	Children []*TreeNode
}

// DeleteResult описывает итог каскадного удаления.
type DeleteResult struct {
	DeletedCategories int
	ClearedVideos     int64
}

// NormalizeCategoryName обрезает пробелы и проверяет длину имени.
func NormalizeCategoryName(name string) (string, error) {
	if err := validation.ValidateCategoryName(name); err != nil {
		return "", apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	return strings.TrimSpace(name), nil
}

// NewCategory создаёт категорию, ещё не сохранённую в хранилище.
func NewCategory(name string, parentID *int64, position, depth, maxDepth int) (*Category, error) {
	normalized, err := NormalizeCategoryName(name)
	if err != nil {
		return nil, err
	}
	if depth > maxDepth {
		return nil, apperror.DepthExceeded(maxDepth)
	}

	now := time.Now()
	return &Category{
		Name:      normalized,
		ParentID:  parentID,
		Position:  position,
		Depth:     depth,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// IsRoot сообщает, что категория лежит на верхнем уровне.
func (c *Category) IsRoot() bool {
	return c.ParentID == nil
}

// HasName сравнивает имя без учёта регистра, как уникальный индекс в БД.
func (c *Category) HasName(name string) bool {
	return strings.EqualFold(c.Name, strings.TrimSpace(name))
}

// SameParentID сравнивает два nullable parent_id (оба nil или равны).
func SameParentID(a, b *int64) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return *a == *b
}

// FindSiblingByName ищет среди соседей категорию с тем же именем, кроме exceptID.
func FindSiblingByName(siblings []Category, name string, exceptID int64) *Category {
	for i := range siblings {
		if siblings[i].ID != exceptID && siblings[i].HasName(name) {
			return &siblings[i]
		}
	}
	return nil
}

// SubtreeHeight возвращает число уровней под корнем поддерева (0 для листа).
func SubtreeHeight(nodes []SubtreeNode) int {
	height := 0
	for _, n := range nodes {
		if n.Level > height {
			height = n.Level
		}
	}
	return height
}
