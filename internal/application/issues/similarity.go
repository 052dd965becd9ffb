package issues

import (
	"sort"

	"github.com/doeshing/gitbrew/internal/domain"
)

// ScoredIssue is an issue with its similarity to some reference.
type ScoredIssue struct {
	Issue domain.Issue
	Score float64
}

// DuplicateGroup is an issue together with the later issues that look like
// duplicates of it.
type DuplicateGroup struct {
	Issue      domain.Issue
	Duplicates []ScoredIssue
}

// Best returns the highest similarity in the group.
func (g DuplicateGroup) Best() float64 {
	if len(g.Duplicates) == 0 {
		return 0
	}
	return g.Duplicates[0].Score
}

// groupDuplicates compares every pair once. An issue already claimed as a
// duplicate does not anchor its own group.
func groupDuplicates(issues []domain.Issue, vectors [][]float64, threshold float64) []DuplicateGroup {
	claimed := make([]bool, len(issues))
	var groups []DuplicateGroup

	for i := range issues {
		if claimed[i] {
			continue
		}
		group := DuplicateGroup{Issue: issues[i]}
		for j := i + 1; j < len(issues); j++ {
			if claimed[j] {
				continue
			}
			score := domain.Cosine(vectors[i], vectors[j])
			if score > threshold {
				group.Duplicates = append(group.Duplicates, ScoredIssue{Issue: issues[j], Score: score})
				claimed[j] = true
			}
		}
		if len(group.Duplicates) == 0 {
			continue
		}
		sort.SliceStable(group.Duplicates, func(a, b int) bool {
			return group.Duplicates[a].Score > group.Duplicates[b].Score
		})
		groups = append(groups, group)
	}

	sort.SliceStable(groups, func(a, b int) bool { return groups[a].Best() > groups[b].Best() })
	return groups
}
