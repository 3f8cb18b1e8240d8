package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupTags(t *testing.T) {
	// First occurrence wins and keeps its casing.
	got := DedupTags([]string{"Battle", "religion", "battle", " BATTLE ", "Religion"})
	assert.Equal(t, []string{"Battle", "religion"}, got)
}

func TestDedupTags_TrimsAndDropsEmpty(t *testing.T) {
	got := DedupTags([]string{"  culture  ", "", "   "})
	assert.Equal(t, []string{"culture"}, got)

	assert.Nil(t, DedupTags(nil))
	assert.Nil(t, DedupTags([]string{"", "  "}))
}

func TestTagSet(t *testing.T) {
	set := TagSet([]string{"Battle", " RELIGION "})
	assert.Contains(t, set, "battle")
	assert.Contains(t, set, "religion")
	assert.Len(t, set, 2)
}
