package indexer

import (
	"math"
	"sort"
	"strings"

	"wikindex/internal/rest"
)

// Stats summarizes the shape of an index.
type Stats struct {
	// Resources is the number of indexed pages.
	Resources int `json:"resources"`
	// Trails is the number of distinct breadcrumb trails.
	Trails int `json:"trails"`
	// Depth contains statistics about the breadcrumb depth of the pages.
	Depth DepthStats `json:"depth"`
}

// DepthStats contains statistics about breadcrumb depth, the number of
// ancestors of a page.
type DepthStats struct {
	Min  int     `json:"min"`
	Max  int     `json:"max"`
	Mean float64 `json:"mean"`
	P95  int     `json:"p95"`
}

// ComputeStats computes Stats for an index.
func ComputeStats(index map[string]rest.Resource) Stats {
	stats := Stats{Resources: len(index)}
	if len(index) == 0 {
		return stats
	}

	trails := make(map[string]struct{})
	depths := make([]int, 0, len(index))
	for _, res := range index {
		trails[res.Breadcrumbs()] = struct{}{}
		depths = append(depths, depth(res.Breadcrumbs()))
	}

	stats.Trails = len(trails)
	stats.Depth = computeDepthStats(depths)
	return stats
}

// depth counts the segments of a breadcrumb trail: "" is 0, "/stories" is 1.
func depth(breadcrumbs string) int {
	return strings.Count(breadcrumbs, "/")
}

// computeDepthStats computes min, max, mean, and p95 from depths.
func computeDepthStats(depths []int) DepthStats {
	if len(depths) == 0 {
		return DepthStats{}
	}

	sorted := make([]int, len(depths))
	copy(sorted, depths)
	sort.Ints(sorted)

	sum := 0
	for _, d := range depths {
		sum += d
	}
	mean := float64(sum) / float64(len(depths))

	p95Index := int(math.Ceil(float64(len(sorted))*0.95)) - 1
	if p95Index < 0 {
		p95Index = 0
	}

	return DepthStats{
		Min:  sorted[0],
		Max:  sorted[len(sorted)-1],
		Mean: math.Round(mean*100) / 100,
		P95:  sorted[p95Index],
	}
}
