package runner

import (
	"slices"
	"sort"

	"github.com/DjordjeVuckovic/microbench/internal/bench/params"
	"github.com/DjordjeVuckovic/microbench/internal/bench/registry"
)

// Reconcile builds the metrics function's arguments: the declared names
// found in p (minus denylist), then the declared names found in result.
// Result fields win on a name collision.
func Reconcile(result registry.Result, p *params.Set, fn registry.MetricsFunc, denylist []string) *params.Set {
	args := params.New()
	for _, k := range p.Keys() {
		if !fn.Declares(k) || slices.Contains(denylist, k) {
			continue
		}
		v, _ := p.Get(k)
		args.Put(k, v)
	}

	keys := make([]string, 0, len(result))
	for k := range result {
		if fn.Declares(k) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		args.Put(k, result[k])
	}
	return args
}
