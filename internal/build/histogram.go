package build

import (
	"sort"
	"strconv"

	"github.com/sirupsen/logrus"

	"cistat/pkg/mdtable"
)

// KeyCount is one row of the step-key frequency table.
type KeyCount struct {
	Key   string
	Count int
}

// TopStepKeys counts step-key occurrences across all jobs of all builds and
// partitions jobs by key. Jobs without a step key (null upstream, e.g. the
// pipeline upload step) do not contribute. Order within a key group is the
// iteration order of the input, with no cross-build guarantee.
func TopStepKeys(builds []Build) (map[string]int, map[string][]Job) {
	counts := map[string]int{}
	jobsByKey := map[string][]Job{}

	for _, b := range builds {
		for _, j := range b.Jobs {
			if j.StepKey == nil {
				continue
			}
			key := *j.StepKey
			counts[key]++
			jobsByKey[key] = append(jobsByKey[key], j)
		}
	}

	logrus.Infof("observed %d distinct step keys across builds", len(counts))
	return counts, jobsByKey
}

// MostCommon returns up to n (key, count) pairs sorted by descending count,
// ties broken lexicographically by key so the order is stable.
func MostCommon(counts map[string]int, n int) []KeyCount {
	ranked := make([]KeyCount, 0, len(counts))
	for k, c := range counts {
		ranked = append(ranked, KeyCount{Key: k, Count: c})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Key < ranked[j].Key
	})
	if n < len(ranked) {
		ranked = ranked[:n]
	}
	return ranked
}

// StepKeyTable renders the top-n step keys by execution count as a Markdown
// table. Empty input yields an empty string.
func StepKeyTable(counts map[string]int, n int) string {
	var rows [][]string
	for _, kc := range MostCommon(counts, n) {
		rows = append(rows, []string{kc.Key, strconv.Itoa(kc.Count)})
	}
	return mdtable.Render([]string{"step key", "number of executions"}, rows)
}
