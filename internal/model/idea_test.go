package model

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateRequiresTitle(t *testing.T) {
	idea := NewIdea("c1", "   ", "body")
	require.Error(t, idea.Validate())

	idea = NewIdea("c1", "  launch checklist  ", "body")
	require.NoError(t, idea.Validate())
	require.Equal(t, "launch checklist", idea.Title)
}

func TestKeyPrefersServerID(t *testing.T) {
	idea := NewIdea("abc-123", "x", "")
	require.Equal(t, "abc-123", idea.Key())

	idea.ID = 42
	require.Equal(t, "42", idea.Key())
}

func TestParseTagsKeepsOrder(t *testing.T) {
	tags := ParseTags(" go, cli ,, offline-sync ")
	require.Equal(t, []string{"go", "cli", "offline-sync"}, tags)

	require.Empty(t, ParseTags("  ,  "))
}
