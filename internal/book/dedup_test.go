package book_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asmelnik/bookvault/internal/book"
)

func titles(books []*book.Book) []string {
	out := make([]string, 0, len(books))
	for _, b := range books {
		out = append(out, b.Title)
	}
	return out
}

/*
TestPartitionByTitle_InBatchDuplicate verifies the first occurrence of a
repeated title wins and later ones land in the duplicate partition.
*/
func TestPartitionByTitle_InBatchDuplicate(t *testing.T) {
	candidates := []*book.Book{
		{Title: "Dune"},
		{Title: "Dune"},
		{Title: "Hyperion"},
	}

	novel, duplicates := book.PartitionByTitle(nil, candidates)

	assert.Equal(t, []string{"Dune", "Hyperion"}, titles(novel))
	assert.Equal(t, []string{"Dune"}, titles(duplicates))
}

/*
TestPartitionByTitle_ExistingTitles verifies titles already in the catalog
are duplicates even when they appear only once in the batch.
*/
func TestPartitionByTitle_ExistingTitles(t *testing.T) {
	existing := map[string]struct{}{
		"Dune": {},
	}
	candidates := []*book.Book{
		{Title: "Dune"},
		{Title: "Hyperion"},
	}

	novel, duplicates := book.PartitionByTitle(existing, candidates)

	assert.Equal(t, []string{"Hyperion"}, titles(novel))
	assert.Equal(t, []string{"Dune"}, titles(duplicates))
}

/*
TestPartitionByTitle_CaseSensitive verifies the comparison is exact: a title
differing only in case is a distinct book.
*/
func TestPartitionByTitle_CaseSensitive(t *testing.T) {
	candidates := []*book.Book{
		{Title: "Dune"},
		{Title: "dune"},
	}

	novel, duplicates := book.PartitionByTitle(nil, candidates)

	require.Len(t, novel, 2)
	assert.Empty(t, duplicates)
}

/*
TestPartitionByTitle_PreservesOrder verifies candidate order survives into
both partitions.
*/
func TestPartitionByTitle_PreservesOrder(t *testing.T) {
	existing := map[string]struct{}{"B": {}, "D": {}}
	candidates := []*book.Book{
		{Title: "A"}, {Title: "B"}, {Title: "C"}, {Title: "D"}, {Title: "E"},
	}

	novel, duplicates := book.PartitionByTitle(existing, candidates)

	assert.Equal(t, []string{"A", "C", "E"}, titles(novel))
	assert.Equal(t, []string{"B", "D"}, titles(duplicates))
}

/*
TestPartitionByTitle_EmptyBatch degenerates to two empty partitions.
*/
func TestPartitionByTitle_EmptyBatch(t *testing.T) {
	novel, duplicates := book.PartitionByTitle(map[string]struct{}{"X": {}}, nil)

	assert.Empty(t, novel)
	assert.Empty(t, duplicates)
}
