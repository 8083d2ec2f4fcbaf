package repository

import (
	"context"
	"testing"

	"github.com/OfficialBika/BikaCommentPicker/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApprovedGroupRepository(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewApprovedGroupRepository(testDB.DB)
	ctx := context.Background()

	groupID := int64(-1005)
	ownerID := int64(777)

	t.Run("unapproved group is nil", func(t *testing.T) {
		group, err := repo.Get(ctx, groupID)
		require.NoError(t, err)
		assert.Nil(t, group)
	})

	t.Run("upsert approves the group", func(t *testing.T) {
		group, err := repo.Upsert(ctx, groupID, ownerID)
		require.NoError(t, err)
		assert.Equal(t, groupID, group.GroupID)
		assert.Equal(t, ownerID, group.ApprovedBy)
		assert.False(t, group.ApprovedAt.IsZero())
	})

	t.Run("re-approval refreshes instead of failing", func(t *testing.T) {
		first, err := repo.Get(ctx, groupID)
		require.NoError(t, err)
		require.NotNil(t, first)

		again, err := repo.Upsert(ctx, groupID, ownerID)
		require.NoError(t, err)
		assert.True(t, again.ApprovedAt.Equal(first.ApprovedAt) || again.ApprovedAt.After(first.ApprovedAt))

		group, err := repo.Get(ctx, groupID)
		require.NoError(t, err)
		require.NotNil(t, group)
		assert.Equal(t, ownerID, group.ApprovedBy)
	})
}
