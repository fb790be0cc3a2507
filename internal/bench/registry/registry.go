package registry

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/DjordjeVuckovic/microbench/internal/bench/params"
)

// MetricsSuffix is appended to a benchmark function's name to find its
// metrics function in the same module.
const MetricsSuffix = "_calculate_metrics"

type Family string

const (
	FamilyCollective  Family = "collective"
	FamilyMatmul      Family = "matmul"
	FamilyConvolution Family = "convolution"
	FamilyAttention   Family = "attention"
	FamilyMemoryCopy  Family = "memory-copy"
)

// Result maps result-field name to value.
type Result map[string]any

type (
	Metadata map[string]any
	Metrics  map[string]any
)

// BenchmarkFunc runs one benchmark with a reconciled parameter set.
type BenchmarkFunc func(ctx context.Context, p *params.Set) (Result, error)

// MetricsFunc pairs a metrics calculation with the argument names it
// declares. The dispatcher passes exactly the declared names it can find.
type MetricsFunc struct {
	Args []string
	Fn   func(args *params.Set) (Metadata, Metrics, error)
}

func (m MetricsFunc) Declares(name string) bool {
	return slices.Contains(m.Args, name)
}

// Module groups benchmark and metrics functions under one name.
type Module struct {
	Name       string
	Benchmarks map[string]BenchmarkFunc
	Metrics    map[string]MetricsFunc
}

type Entry struct {
	Name     string
	Family   Family
	Module   string
	Function string
}

// Location renders the entry as "<module>.<function>".
func (e Entry) Location() string {
	return e.Module + "." + e.Function
}

type Registry struct {
	entries map[string]Entry
	order   []string
	modules map[string]*Module
}

func New() *Registry {
	return &Registry{
		entries: make(map[string]Entry),
		modules: make(map[string]*Module),
	}
}

// Register maps name to a "<module>.<function>" location.
func (r *Registry) Register(family Family, name, location string) error {
	if _, ok := r.entries[name]; ok {
		return fmt.Errorf("benchmark %q registered twice", name)
	}
	idx := strings.LastIndex(location, ".")
	if idx <= 0 || idx == len(location)-1 {
		return fmt.Errorf("benchmark %q: invalid location %q", name, location)
	}
	r.entries[name] = Entry{
		Name:     name,
		Family:   family,
		Module:   location[:idx],
		Function: location[idx+1:],
	}
	r.order = append(r.order, name)
	return nil
}

func (r *Registry) AddModule(m *Module) {
	r.modules[m.Name] = m
}

func (r *Registry) Entry(name string) (Entry, bool) {
	e, ok := r.entries[name]
	return e, ok
}

// Names returns the registered benchmark names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// ByFamily groups registered names by family, families sorted by name.
func (r *Registry) ByFamily() map[Family][]string {
	out := make(map[Family][]string)
	for _, name := range r.order {
		e := r.entries[name]
		out[e.Family] = append(out[e.Family], name)
	}
	return out
}

// Families returns the families present in the registry, sorted.
func (r *Registry) Families() []Family {
	var out []Family
	for f := range r.ByFamily() {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Resolve looks name up and loads its benchmark and metrics functions.
func (r *Registry) Resolve(name string) (BenchmarkFunc, MetricsFunc, error) {
	e, ok := r.entries[name]
	if !ok {
		return nil, MetricsFunc{}, &UnknownBenchmarkError{Name: name}
	}

	mod, ok := r.modules[e.Module]
	if !ok {
		return nil, MetricsFunc{}, &ResolutionError{
			Location: e.Location(),
			Err:      fmt.Errorf("module %q not found", e.Module),
		}
	}
	fn, ok := mod.Benchmarks[e.Function]
	if !ok || fn == nil {
		return nil, MetricsFunc{}, &ResolutionError{
			Location: e.Location(),
			Err:      fmt.Errorf("function %q not found in module %q", e.Function, e.Module),
		}
	}

	metrics, ok := mod.Metrics[e.Function+MetricsSuffix]
	if !ok || metrics.Fn == nil {
		return nil, MetricsFunc{}, &MissingMetricsFunctionError{Name: name, Function: e.Function + MetricsSuffix}
	}
	return fn, metrics, nil
}

// Validate resolves every registered entry and joins the failures.
func (r *Registry) Validate() error {
	var errs []error
	for _, name := range r.order {
		if _, _, err := r.Resolve(name); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
