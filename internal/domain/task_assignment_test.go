package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCompletionsCollapsesDuplicates(t *testing.T) {
	first := time.Date(2025, 4, 17, 9, 0, 0, 0, time.UTC)
	later := first.Add(time.Hour)

	a := &TaskAssignment{
		TotalTasks: 2,
		Links: []TaskLink{
			{URL: "https://yt/a", Kind: LinkShort},
			{URL: "https://yt/b", Kind: LinkLong},
		},
		CompletedTasks: []TaskCompletion{
			{Link: "https://yt/a", CompletedAt: first},
			{Link: "https://yt/a", CompletedAt: later},
		},
	}

	set := a.Completions()
	require.Len(t, set, 1)
	// The earliest recorded completion wins.
	require.Equal(t, first, set["https://yt/a"])

	require.Equal(t, 1, a.DistinctCompletedCount())
	require.False(t, a.FullyCompleted())

	a.CompletedTasks = append(a.CompletedTasks, TaskCompletion{Link: "https://yt/b", CompletedAt: later})
	require.True(t, a.FullyCompleted())
}
