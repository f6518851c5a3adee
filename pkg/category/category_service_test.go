package category

import (
	"context"
	"testing"

	"github.com/sonaeru/sonaeru/internal/test_utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ctx = test_utils.ContextWithUser()

var categoryRepoStub = NewStubCategoryRepo()

var service Service

func setup(t *testing.T) func() {
	service = NewCategoryService(categoryRepoStub)
	return func() {
		t.Log("Teardown after test")
		categoryRepoStub.Cleanup()
	}
}

func TestServiceImpl_Create(t *testing.T) {
	t.Run("should create a root category", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// when
		created, err := service.Create(ctx, Category{Name: "Taxes"})

		// then
		assert.NoError(t, err)
		assert.Equal(t, "Taxes", created.Name)
		assert.NotZero(t, created.Id)
	})

	t.Run("should create a child category under an existing parent", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		parent, err := service.Create(ctx, Category{Name: "Insurance"})
		require.NoError(t, err)

		// when
		child, err := service.Create(ctx, Category{Name: "Car insurance", ParentId: &parent.Id})

		// then
		assert.NoError(t, err)
		require.NotNil(t, child.ParentId)
		assert.Equal(t, parent.Id, *child.ParentId)
	})

	t.Run("should reject a missing parent", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		missing := 999

		// when
		_, err := service.Create(ctx, Category{Name: "Orphan", ParentId: &missing})

		// then
		assert.ErrorIs(t, err, ErrCategoryNotFound)
	})

	t.Run("should return error when context has no user", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// when
		_, err := service.Create(context.Background(), Category{Name: "Taxes"})

		// then
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to get current user")
	})
}

func TestServiceImpl_Delete(t *testing.T) {
	t.Run("should delete an existing category", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		created, err := service.Create(ctx, Category{Name: "One-off"})
		require.NoError(t, err)

		// when
		deleted, err := service.Delete(ctx, created.Id)

		// then
		assert.NoError(t, err)
		assert.True(t, deleted)

		categories, err := service.GetAll(ctx)
		require.NoError(t, err)
		assert.Empty(t, categories)
	})

	t.Run("should report false for a nonexistent category", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// when
		deleted, err := service.Delete(ctx, 42)

		// then
		assert.NoError(t, err)
		assert.False(t, deleted)
	})
}
