package valueobject

import "github.com/ignatzorin/videomarket-backend/internal/pkg/apperror"

// DeleteStrategy определяет судьбу видео из удаляемого поддерева.
type DeleteStrategy string

const (
	// DeleteStrategyClearVideos снимает категорию с видео (видео становятся «без категории»).
	DeleteStrategyClearVideos DeleteStrategy = "clear"
)

func (s DeleteStrategy) IsValid() bool {
	switch s {
	case DeleteStrategyClearVideos:
		return true
	}
	return false
}

// NewDeleteStrategy разбирает стратегию из запроса; пустое значение означает clear.
func NewDeleteStrategy(raw string) (DeleteStrategy, error) {
	if raw == "" {
		return DeleteStrategyClearVideos, nil
	}
	s := DeleteStrategy(raw)
	if !s.IsValid() {
		return "", apperror.New(apperror.ErrCodeValidation, "неподдерживаемая стратегия удаления: "+raw)
	}
	return s, nil
}
