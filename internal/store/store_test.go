package store

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnect_EmptyURL(t *testing.T) {
	_, err := Connect(context.Background(), "")
	assert.Error(t, err)
}

// TestStore_RoundTrip exercises the store against a real database. It is
// skipped unless TEST_DATABASE_URL is set.
func TestStore_RoundTrip(t *testing.T) {
	databaseURL := os.Getenv("TEST_DATABASE_URL")
	if databaseURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	s, err := Connect(ctx, databaseURL)
	require.NoError(t, err)
	defer s.Close()

	score := 80
	id, err := s.CreateRun(ctx, &Run{
		FileName:      "resume.pdf",
		ThreadID:      "thread-1",
		ExtractedText: "before",
		OptimizedText: "after",
		MatchScore:    &score,
	})
	require.NoError(t, err)

	run, err := s.GetRun(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, run)
	assert.Equal(t, "resume.pdf", run.FileName)
	assert.Equal(t, "after", run.OptimizedText)
	require.NotNil(t, run.MatchScore)
	assert.Equal(t, 80, *run.MatchScore)

	runs, err := s.ListRuns(ctx, 10)
	require.NoError(t, err)
	assert.NotEmpty(t, runs)
}
