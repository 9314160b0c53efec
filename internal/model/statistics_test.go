package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountsPreservesFirstSeenOrder(t *testing.T) {
	c := NewCounts()
	for _, label := range []string{"Level 2", "Level 1", "Level 2", "Level 3", "Level 1", "Level 2"} {
		c.Add(label)
	}

	assert.Equal(t, []string{"Level 2", "Level 1", "Level 3"}, c.Labels())
	assert.Equal(t, 3, c.Get("Level 2"))
	assert.Equal(t, 0, c.Get("Level 9"))
	assert.Equal(t, 3, c.Len())
	assert.Equal(t, 6, c.Sum())

	data, err := json.Marshal(c)
	require.NoError(t, err)
	assert.JSONEq(t, `{"Level 2":3,"Level 1":2,"Level 3":1}`, string(data))
	assert.Equal(t, `{"Level 2":3,"Level 1":2,"Level 3":1}`, string(data))
}

func TestNilCounts(t *testing.T) {
	var c *Counts
	assert.Equal(t, 0, c.Get("x"))
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, 0, c.Sum())
	assert.Empty(t, c.Labels())

	data, err := c.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, "{}", string(data))
}

func TestDisciplineCountPercentage(t *testing.T) {
	tests := []struct {
		name string
		dc   DisciplineCount
		want int
	}{
		{name: "empty", dc: DisciplineCount{}, want: 0},
		{name: "all resolved", dc: DisciplineCount{Count: 4, Resolved: 4}, want: 100},
		{name: "rounds half up", dc: DisciplineCount{Count: 45, Resolved: 32}, want: 71},
		{name: "two thirds", dc: DisciplineCount{Count: 3, Resolved: 2}, want: 67},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.dc.Percentage())
			assert.Equal(t, tt.dc.Count-tt.dc.Resolved, tt.dc.Remaining())
		})
	}
}

func TestDisciplineHelpers(t *testing.T) {
	assert.Equal(t, "Fire Protection", DisciplineFireProtection.Name())
	assert.True(t, DisciplinePlumbing.Valid())
	assert.False(t, Discipline("STRUCT").Valid())
	assert.True(t, SeverityLow.Valid())
	assert.False(t, Severity("").Valid())
	assert.True(t, ClashRecord{Status: StatusResolved}.IsResolved())
	assert.False(t, ClashRecord{Status: StatusClosed}.IsResolved())
}
