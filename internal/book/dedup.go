package book

// PartitionByTitle splits candidates into novel books and duplicates.
//
// A candidate is a duplicate when its title is already present in existing,
// or when an earlier candidate in the same batch claimed the title. The
// comparison is exact and case-sensitive. Candidate order is preserved in
// both partitions.
func PartitionByTitle(existing map[string]struct{}, candidates []*Book) (novel, duplicates []*Book) {
	seen := make(map[string]struct{}, len(existing)+len(candidates))
	for title := range existing {
		seen[title] = struct{}{}
	}

	for _, candidate := range candidates {
		if _, taken := seen[candidate.Title]; taken {
			duplicates = append(duplicates, candidate)
			continue
		}
		seen[candidate.Title] = struct{}{}
		novel = append(novel, candidate)
	}

	return novel, duplicates
}
