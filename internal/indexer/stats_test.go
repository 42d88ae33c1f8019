package indexer

import (
	"testing"

	"wikindex/internal/rest"
)

func TestComputeStats(t *testing.T) {
	tests := []struct {
		name  string
		index map[string]rest.Resource
		want  Stats
	}{
		{
			name:  "empty index",
			index: map[string]rest.Resource{},
			want:  Stats{},
		},
		{
			name: "top-level pages only",
			index: map[string]rest.Resource{
				"WebHome": rest.NewResource("r/WebHome", ""),
				"Sandbox": rest.NewResource("r/Sandbox", ""),
			},
			want: Stats{Resources: 2, Trails: 1, Depth: DepthStats{}},
		},
		{
			name: "nested stories",
			index: map[string]rest.Resource{
				"stories":        rest.NewResource("r/stories", ""),
				"a_story":        rest.NewResource("r/a_story", "/stories"),
				"another_story":  rest.NewResource("r/another_story", "/stories"),
				"a_nested_story": rest.NewResource("r/a_nested_story", "/stories/another_story"),
			},
			want: Stats{
				Resources: 4,
				Trails:    3,
				Depth:     DepthStats{Min: 0, Max: 2, Mean: 1, P95: 2},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ComputeStats(tt.index); got != tt.want {
				t.Errorf("ComputeStats() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestComputeDepthStats(t *testing.T) {
	got := computeDepthStats([]int{3, 1, 2, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1})

	if got.Min != 1 || got.Max != 3 {
		t.Errorf("min/max = %d/%d, want 1/3", got.Min, got.Max)
	}
	if got.Mean != 1.15 {
		t.Errorf("mean = %v, want 1.15", got.Mean)
	}
	// 95% of 20 depths is the 19th smallest.
	if got.P95 != 2 {
		t.Errorf("p95 = %d, want 2", got.P95)
	}
}

func TestDepth(t *testing.T) {
	tests := map[string]int{
		"":                       0,
		"/stories":               1,
		"/stories/another_story": 2,
	}
	for crumbs, want := range tests {
		if got := depth(crumbs); got != want {
			t.Errorf("depth(%q) = %d, want %d", crumbs, got, want)
		}
	}
}
