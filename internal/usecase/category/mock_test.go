package category_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/videomarket-backend/internal/domain/entity"
	"github.com/ignatzorin/videomarket-backend/internal/domain/repository"
	"github.com/ignatzorin/videomarket-backend/internal/domain/valueobject"
	"github.com/ignatzorin/videomarket-backend/internal/pkg/apperror"
	"github.com/ignatzorin/videomarket-backend/internal/usecase/category"
)

type mockCategoryRepo struct {
	mock.Mock
}

func (m *mockCategoryRepo) ListChildren(ctx context.Context, parentID *int64) ([]entity.Category, error) {
	args := m.Called(ctx, parentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Category), args.Error(1)
}

func (m *mockCategoryRepo) ListAll(ctx context.Context) ([]entity.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Category), args.Error(1)
}

func (m *mockCategoryRepo) FindByID(ctx context.Context, id int64) (*entity.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Category), args.Error(1)
}

func (m *mockCategoryRepo) InTx(ctx context.Context, fn func(tx repository.CategoryTx) error) error {
	args := m.Called(ctx, fn)
	return args.Error(0)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(event entity.CategoryEvent) {
	m.Called(event)
}

func TestUseCases_StoreFailureBecomesDatabaseError(t *testing.T) {
	ctx := context.Background()
	dbErr := errors.New("connection reset by peer")

	repo := new(mockCategoryRepo)
	repo.On("InTx", ctx, mock.Anything).Return(dbErr)
	repo.On("ListAll", ctx).Return(nil, dbErr)
	uc := category.NewUseCases(repo, category.Options{})

	_, err := uc.Create.Execute(ctx, category.CreateCategoryInput{Name: "Новая"})
	require.Error(t, err)
	assert.Equal(t, apperror.ErrCodeDatabaseError, apperror.CodeOf(err))
	assert.ErrorIs(t, err, dbErr)

	_, err = uc.Move.Execute(ctx, 1, nil)
	assert.Equal(t, apperror.ErrCodeDatabaseError, apperror.CodeOf(err))

	_, err = uc.Delete.Execute(ctx, 1, valueobject.DeleteStrategyClearVideos)
	assert.Equal(t, apperror.ErrCodeDatabaseError, apperror.CodeOf(err))

	_, err = uc.ListFlat.Execute(ctx)
	assert.Equal(t, apperror.ErrCodeDatabaseError, apperror.CodeOf(err))

	repo.AssertExpectations(t)
}

func TestUseCases_ConflictPassesThrough(t *testing.T) {
	ctx := context.Background()
	repo := new(mockCategoryRepo)
	repo.On("InTx", ctx, mock.Anything).Return(apperror.ErrConcurrentChange)
	uc := category.NewUseCases(repo, category.Options{})

	_, err := uc.Reorder.Execute(ctx, 1, nil)
	assert.True(t, apperror.IsConflict(err))
}

func TestUseCases_ValidationRunsBeforeStore(t *testing.T) {
	repo := new(mockCategoryRepo)
	uc := category.NewUseCases(repo, category.Options{})

	_, err := uc.Create.Execute(context.Background(), category.CreateCategoryInput{Name: " "})
	assert.True(t, apperror.IsValidation(err))

	_, err = uc.Move.Execute(context.Background(), 3, func() *int64 { id := int64(3); return &id }())
	assert.True(t, apperror.IsCycle(err))

	repo.AssertNotCalled(t, "InTx", mock.Anything, mock.Anything)
}

func TestUseCases_PublishEventsAfterCommit(t *testing.T) {
	publisher := new(mockPublisher)
	publisher.On("Publish", mock.AnythingOfType("entity.CategoryEvent")).Return()
	f := newFixture(t, category.Options{Publisher: publisher})
	ctx := context.Background()

	a := f.create(t, "A", nil)
	b := f.create(t, "B", nil)
	_, err := f.uc.Rename.Execute(ctx, a.ID, "A2")
	require.NoError(t, err)
	_, err = f.uc.Move.Execute(ctx, b.ID, &a.ID)
	require.NoError(t, err)
	_, err = f.uc.Delete.Execute(ctx, a.ID, valueobject.DeleteStrategyClearVideos)
	require.NoError(t, err)

	// Отклонённая операция событий не порождает
	_, err = f.uc.Create.Execute(ctx, category.CreateCategoryInput{Name: ""})
	require.Error(t, err)

	var types []entity.CategoryEventType
	for _, call := range publisher.Calls {
		types = append(types, call.Arguments.Get(0).(entity.CategoryEvent).Type)
	}
	assert.Equal(t, []entity.CategoryEventType{
		entity.CategoryCreated,
		entity.CategoryCreated,
		entity.CategoryRenamed,
		entity.CategoryMoved,
		entity.CategoryDeleted,
	}, types)
}
