package category

import (
	"context"

	"github.com/ignatzorin/videomarket-backend/internal/domain/entity"
	"github.com/ignatzorin/videomarket-backend/internal/domain/repository"
)

type GetCountsUseCase struct {
	repo repository.CategoryRepository
}

func NewGetCountsUseCase(repo repository.CategoryRepository) *GetCountsUseCase {
	return &GetCountsUseCase{repo: repo}
}

// Execute считает последствия удаления или переноса категории.
func (uc *GetCountsUseCase) Execute(ctx context.Context, id int64) (*entity.Counts, error) {
	var counts entity.Counts
	err := uc.repo.InTx(ctx, func(tx repository.CategoryTx) error {
		nodes, err := tx.Subtree(ctx, id)
		if err != nil {
			return err
		}

		ids := make([]int64, 0, len(nodes))
		for _, n := range nodes {
			ids = append(ids, n.ID)
			if n.Level == 1 {
				counts.Children++
			}
		}
		counts.Descendants = len(nodes) - 1

		if counts.Videos, err = tx.CountVideos(ctx, []int64{id}); err != nil {
			return err
		}
		counts.SubtreeVideos, err = tx.CountVideos(ctx, ids)
		return err
	})
	if err != nil {
		return nil, storeError(err, "не удалось посчитать содержимое категории")
	}
	return &counts, nil
}
