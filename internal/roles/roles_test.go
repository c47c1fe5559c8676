package roles

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/evpulse/pulse-bot/pkg/errors"
)

func TestDescribe(t *testing.T) {
	t.Run("known role", func(t *testing.T) {
		r, err := Describe(Software)
		require.NoError(t, err)
		assert.Equal(t, "Software Engineering", r.Name)
		assert.Equal(t, []string{"software", "firmware", "controls"}, r.DefaultChannels)
		assert.Equal(t, []string{"firmware", "controls", "software-architecture", "testing"}, r.DefaultInterests)
	})

	t.Run("unknown role", func(t *testing.T) {
		_, err := Describe("INTERN")
		require.Error(t, err)
		assert.True(t, apperrors.IsCode(err, apperrors.CodeUnknownRole))
	})

	t.Run("returned slices are copies", func(t *testing.T) {
		r, err := Describe(Mechanical)
		require.NoError(t, err)
		r.DefaultChannels[0] = "mutated"

		again, err := Describe(Mechanical)
		require.NoError(t, err)
		assert.Equal(t, "mechanical", again.DefaultChannels[0])
	})
}

func TestHierarchyRank(t *testing.T) {
	base := HierarchyRank(Default)
	for _, role := range Available() {
		assert.GreaterOrEqual(t, HierarchyRank(role), base, "role %s ranks below base", role)
	}

	assert.Equal(t, base, HierarchyRank(""))
	assert.Equal(t, base, HierarchyRank("NOT_A_ROLE"))
	assert.Equal(t, 4, HierarchyRank(ProjectManager))
	assert.Equal(t, 3, HierarchyRank(Systems))
	assert.Equal(t, 2, HierarchyRank(Mechanical))
}

func TestChannelAccessLevel(t *testing.T) {
	assert.Equal(t, 1, ChannelAccessLevel("general"))
	assert.Equal(t, 2, ChannelAccessLevel("electrical"))
	assert.Equal(t, 3, ChannelAccessLevel("systems"))
	assert.Equal(t, 4, ChannelAccessLevel("management"))
	// unknown channels are open to everyone
	assert.Equal(t, 1, ChannelAccessLevel("random-project-channel"))
}

func TestAvailable(t *testing.T) {
	got := Available()
	assert.Len(t, got, 5)
	assert.Contains(t, got, ProjectManager)
	assert.NotContains(t, got, Default)
}
