package registry

import (
	"fmt"
	"sort"
)

var collectiveCatalog = map[string]string{
	"all_gather":   "collectives.all_gather_benchmark",
	"psum":         "collectives.psum_benchmark",
	"psum_scatter": "collectives.psum_scatter_benchmark",
	"all_to_all":   "collectives.all_to_all_benchmark",
	"ppermute":     "collectives.ppermute_benchmark",
}

var matmulCatalog = map[string]string{
	"naive_matmul":             "matmul.naive_matmul",
	"single_host_naive_matmul": "matmul.single_host_naive_matmul",
}

var convolutionCatalog = map[string]string{
	"convolve_1d":             "convolution.convolve_1d",
	"convolve_2d":             "convolution.convolve_2d",
	"numpy_convolve":          "convolution.convolve_1d",
	"scipy_signal_convolve":   "convolution.convolve_1d",
	"scipy_signal_convolve2d": "convolution.convolve_2d",
}

var attentionCatalog = map[string]string{
	"naive_attention": "attention.naive_attention_benchmark",
}

var memoryCopyCatalog = map[string]string{
	"memory_copy":          "hbm.single_chip_memory_copy",
	"single_chip_hbm_copy": "hbm.single_chip_hbm_copy",
}

var catalog = []struct {
	family  Family
	entries map[string]string
}{
	{FamilyCollective, collectiveCatalog},
	{FamilyMatmul, matmulCatalog},
	{FamilyConvolution, convolutionCatalog},
	{FamilyAttention, attentionCatalog},
	{FamilyMemoryCopy, memoryCopyCatalog},
}

// NewDefault returns a registry holding the static catalog. Modules still
// have to be added before names resolve.
func NewDefault() *Registry {
	r := New()
	for _, group := range catalog {
		for _, name := range sortedKeys(group.entries) {
			if err := r.Register(group.family, name, group.entries[name]); err != nil {
				panic(fmt.Sprintf("registry catalog: %v", err))
			}
		}
	}
	return r
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
