package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ignatzorin/videomarket-backend/internal/domain/entity"
	"github.com/ignatzorin/videomarket-backend/internal/validation"
)

// NullableID принимает число, числовую строку или null.
// Админка шлёт результат parseInt либо ключи объектов-строк.
type NullableID struct {
	Value *int64
}

func (n *NullableID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		n.Value = nil
		return nil
	}

	var raw string
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
	} else {
		var num json.Number
		if err := json.Unmarshal(data, &num); err != nil {
			return fmt.Errorf("идентификатор должен быть числом или null")
		}
		raw = num.String()
	}

	id, err := validation.ParseOptionalID(raw)
	if err != nil {
		return err
	}
	n.Value = id
	return nil
}

func (n NullableID) MarshalJSON() ([]byte, error) {
	if n.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*n.Value)
}

type CreateCategoryRequest struct {
	Name     string     `json:"name" binding:"required,notblank,max=100"`
	ParentID NullableID `json:"parent_id"`
}

type RenameCategoryRequest struct {
	Name string `json:"name" binding:"required,notblank,max=100"`
}

type MoveCategoryRequest struct {
	ParentID NullableID `json:"parent_id"`
}

type ReorderCategoryRequest struct {
	BeforeID NullableID `json:"before_id"`
}

type CategoryResponse struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	ParentID      *int64    `json:"parent_id"`
	Position      int       `json:"position"`
	Depth         int       `json:"depth"`
	ChildrenCount int       `json:"children_count"`
	HasChildren   bool      `json:"has_children"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// AdminCategoryResponse описывает элемент плоского списка админки.
type AdminCategoryResponse struct {
	CategoryResponse
	Breadcrumb []string `json:"breadcrumb"`
	Path       string   `json:"path"`
}

// PublicCategoryResponse описывает элемент публичного списка для фильтров.
type PublicCategoryResponse struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	ParentID *int64 `json:"parent_id"`
	Depth    int    `json:"depth"`
	Path     string `json:"path"`
}

type TreeNodeResponse struct {
	ID       int64              `json:"id"`
	Name     string             `json:"name"`
	ParentID *int64             `json:"parent_id"`
	Position int                `json:"position"`
	Depth    int                `json:"depth"`
	Path     string             `json:"path"`
	Children []TreeNodeResponse `json:"children"`
}

type TreeResponse struct {
	Tree []TreeNodeResponse `json:"tree"`
}

type CountsResponse struct {
	Children      int `json:"children"`
	Descendants   int `json:"descendants"`
	Videos        int `json:"videos"`
	SubtreeVideos int `json:"subtree_videos"`
}

type DeleteCategoryResponse struct {
	DeletedCategories int   `json:"deleted_categories"`
	ClearedVideos     int64 `json:"cleared_videos"`
}

type SeedResponse struct {
	Seeded     bool               `json:"seeded"`
	Categories []CategoryResponse `json:"categories"`
}

func ToCategoryResponse(c *entity.Category) CategoryResponse {
	return CategoryResponse{
		ID:            c.ID,
		Name:          c.Name,
		ParentID:      c.ParentID,
		Position:      c.Position,
		Depth:         c.Depth,
		ChildrenCount: c.ChildrenCount,
		HasChildren:   c.ChildrenCount > 0,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}

func ToCategoryResponses(categories []entity.Category) []CategoryResponse {
	result := make([]CategoryResponse, 0, len(categories))
	for i := range categories {
		result = append(result, ToCategoryResponse(&categories[i]))
	}
	return result
}

func ToAdminCategoryResponses(flat []entity.FlatCategory) []AdminCategoryResponse {
	result := make([]AdminCategoryResponse, 0, len(flat))
	for i := range flat {
		result = append(result, AdminCategoryResponse{
			CategoryResponse: ToCategoryResponse(&flat[i].Category),
			Breadcrumb:       flat[i].Breadcrumb,
			Path:             flat[i].Path(),
		})
	}
	return result
}

func ToPublicCategoryResponses(flat []entity.FlatCategory) []PublicCategoryResponse {
	result := make([]PublicCategoryResponse, 0, len(flat))
	for _, fc := range flat {
		result = append(result, PublicCategoryResponse{
			ID:       fc.ID,
			Name:     fc.Name,
			ParentID: fc.ParentID,
			Depth:    fc.Depth,
			Path:     fc.Path(),
		})
	}
	return result
}

func ToTreeResponse(nodes []*entity.TreeNode) TreeResponse {
	return TreeResponse{Tree: toTreeNodes(nodes)}
}

func toTreeNodes(nodes []*entity.TreeNode) []TreeNodeResponse {
	result := make([]TreeNodeResponse, 0, len(nodes))
	for _, n := range nodes {
		result = append(result, TreeNodeResponse{
			ID:       n.ID,
			Name:     n.Name,
			ParentID: n.ParentID,
			Position: n.Position,
			Depth:    n.Depth,
			Path:     n.Path(),
			Children: toTreeNodes(n.Children),
		})
	}
	return result
}

func ToCountsResponse(c *entity.Counts) CountsResponse {
	return CountsResponse{
		Children:      c.Children,
		Descendants:   c.Descendants,
		Videos:        c.Videos,
		SubtreeVideos: c.SubtreeVideos,
	}
}

func ToDeleteCategoryResponse(r *entity.DeleteResult) DeleteCategoryResponse {
	return DeleteCategoryResponse{
		DeletedCategories: r.DeletedCategories,
		ClearedVideos:     r.ClearedVideos,
	}
}
