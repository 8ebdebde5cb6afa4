package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/videomarket-backend/internal/domain/valueobject"
	"github.com/ignatzorin/videomarket-backend/internal/interface/http/dto"
	"github.com/ignatzorin/videomarket-backend/internal/interface/http/response"
	"github.com/ignatzorin/videomarket-backend/internal/usecase/category"
)

type CategoryHandler struct {
	categories *category.UseCases
}

func NewCategoryHandler(categories *category.UseCases) *CategoryHandler {
	return &CategoryHandler{categories: categories}
}

// ListPublic отдаёт плоский список для фильтров видео.
func (h *CategoryHandler) ListPublic(c *gin.Context) {
	flat, err := h.categories.ListFlat.Execute(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToPublicCategoryResponses(flat))
}

// Tree отдаёт вложенное дерево {tree: [...]}.
func (h *CategoryHandler) Tree(c *gin.Context) {
	tree, err := h.categories.ListFlat.Tree(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToTreeResponse(tree))
}

// ListAdmin отдаёт плоский список с хлебными крошками и служебными полями.
func (h *CategoryHandler) ListAdmin(c *gin.Context) {
	flat, err := h.categories.ListFlat.Execute(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToAdminCategoryResponses(flat))
}

// ListChildren подгружает детей лениво, без parent_id возвращает корни.
func (h *CategoryHandler) ListChildren(c *gin.Context) {
	parentID, err := queryParentID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	children, err := h.categories.ListChildren.Execute(c.Request.Context(), parentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToCategoryResponses(children))
}

func (h *CategoryHandler) Create(c *gin.Context) {
	var req dto.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}

	created, err := h.categories.Create.Execute(c.Request.Context(), category.CreateCategoryInput{
		Name:     req.Name,
		ParentID: req.ParentID.Value,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.ToCategoryResponse(created))
}

func (h *CategoryHandler) Rename(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	var req dto.RenameCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}

	renamed, err := h.categories.Rename.Execute(c.Request.Context(), id, req.Name)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToCategoryResponse(renamed))
}

func (h *CategoryHandler) Move(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	var req dto.MoveCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}

	moved, err := h.categories.Move.Execute(c.Request.Context(), id, req.ParentID.Value)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToCategoryResponse(moved))
}

func (h *CategoryHandler) Reorder(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	var req dto.ReorderCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}

	reordered, err := h.categories.Reorder.Execute(c.Request.Context(), id, req.BeforeID.Value)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToCategoryResponse(reordered))
}

func (h *CategoryHandler) Delete(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	strategy, err := valueobject.NewDeleteStrategy(c.Query("strategy"))
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.categories.Delete.Execute(c.Request.Context(), id, strategy)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToDeleteCategoryResponse(result))
}

func (h *CategoryHandler) Counts(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	counts, err := h.categories.GetCounts.Execute(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToCountsResponse(counts))
}

// Seed заполняет пустое хранилище демонстрационным деревом. Маршрут есть только в development.
func (h *CategoryHandler) Seed(c *gin.Context) {
	result, err := h.categories.Seed.Execute(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.SeedResponse{
		Seeded:     result.Seeded,
		Categories: dto.ToCategoryResponses(result.Categories),
	})
}
