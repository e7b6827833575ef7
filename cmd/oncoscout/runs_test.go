package main

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/oncoscout/internal/db"
)

func TestWriteRunsList(t *testing.T) {
	completed := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	runs := []db.Run{
		{
			ID:          uuid.MustParse("11111111-2222-3333-4444-555555555555"),
			CompletedAt: &completed,
			Status:      "completed",
			Collected:   12,
			Surviving:   7,
			Drafted:     2,
		},
		{
			ID:     uuid.MustParse("aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee"),
			Status: "running",
		},
	}

	var sb strings.Builder
	writeRunsList(&sb, runs)

	out := sb.String()
	assert.Contains(t, out, "11111111-2222-3333-4444-555555555555")
	assert.Contains(t, out, "2026-08-31T12:00:00Z")
	assert.Contains(t, out, "collected=12 surviving=7 drafted=2")
	assert.Contains(t, out, "running")
}

func TestWriteRunsList_Empty(t *testing.T) {
	var sb strings.Builder
	writeRunsList(&sb, nil)
	assert.Equal(t, "No archived runs.\n", sb.String())
}

func TestShowArchivedRun_RejectsBadID(t *testing.T) {
	var sb strings.Builder
	err := showArchivedRun(context.Background(), nil, "not-a-uuid", &sb)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid run id")
}
