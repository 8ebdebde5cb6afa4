package entity

import "time"

type CategoryEventType string

const (
	CategoryCreated   CategoryEventType = "category.created"
	CategoryRenamed   CategoryEventType = "category.renamed"
	CategoryMoved     CategoryEventType = "category.moved"
	CategoryReordered CategoryEventType = "category.reordered"
	CategoryDeleted   CategoryEventType = "category.deleted"
)

// CategoryEvent публикуется после успешного коммита структурного изменения.
type CategoryEvent struct {
	Type       CategoryEventType
	CategoryID int64
	ParentID   *int64
	At         time.Time
}

func NewCategoryEvent(eventType CategoryEventType, categoryID int64, parentID *int64) CategoryEvent {
	return CategoryEvent{
		Type:       eventType,
		CategoryID: categoryID,
		ParentID:   parentID,
		At:         time.Now(),
	}
}
