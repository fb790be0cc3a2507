package sweep

import (
	"fmt"

	"github.com/DjordjeVuckovic/microbench/internal/apperr"
	"github.com/DjordjeVuckovic/microbench/internal/bench/params"
)

// MaxProgressionValues bounds the length of one generated sequence.
const MaxProgressionValues = 1 << 20

type ProgressionError struct {
	Key    string
	Reason string
}

func (e *ProgressionError) Error() string {
	return fmt.Sprintf("sweep %q: %s", e.Key, e.Reason)
}

func (e *ProgressionError) Is(target error) bool { return target == apperr.ErrConfig }

// Expand turns each rule into the Cartesian product of its entries and
// concatenates the per-rule results in rule order.
func Expand(rules []Rule) ([]*params.Set, error) {
	var out []*params.Set
	for i, r := range rules {
		sets, err := r.Expand()
		if err != nil {
			return nil, fmt.Errorf("sweep rule %d: %w", i, err)
		}
		out = append(out, sets...)
	}
	return out, nil
}

// Expand generates every combination of the rule's entries. The last entry
// varies fastest.
func (r Rule) Expand() ([]*params.Set, error) {
	var names []string
	seqs := make(map[string][]any)
	for _, e := range r.Entries {
		values := []any{e.Literal}
		if e.Progression != nil {
			v, err := e.Progression.Values()
			if err != nil {
				return nil, &ProgressionError{Key: e.Key, Reason: err.Error()}
			}
			values = v
		}
		name := e.Name()
		if _, ok := seqs[name]; !ok {
			names = append(names, name)
		}
		seqs[name] = values
	}

	total := 1
	for _, n := range names {
		total *= len(seqs[n])
	}
	if total == 0 {
		return nil, nil
	}

	out := make([]*params.Set, 0, total)
	idx := make([]int, len(names))
	for {
		s := params.New()
		for i, n := range names {
			s.Put(n, seqs[n][idx[i]])
		}
		out = append(out, s)

		i := len(idx) - 1
		for ; i >= 0; i-- {
			idx[i]++
			if idx[i] < len(seqs[names[i]]) {
				break
			}
			idx[i] = 0
		}
		if i < 0 {
			return out, nil
		}
	}
}

// Values generates start, start⊕step, ... while the value is <= end. Integer
// inputs yield ints; any float input yields float64s. Progressions that would
// never pass end are rejected.
func (p *Progression) Values() ([]any, error) {
	if p.Start == nil {
		return nil, fmt.Errorf("progression has no start")
	}
	if p.End == nil {
		return nil, fmt.Errorf("progression has no end")
	}
	hasMul, hasInc := p.Multiplier != nil, p.IncreaseBy != nil
	switch {
	case hasMul && hasInc:
		return nil, fmt.Errorf("progression must set only one of multiplier or increase_by")
	case !hasMul && !hasInc:
		return nil, fmt.Errorf("progression must set either multiplier or increase_by")
	}
	stepRaw := p.Multiplier
	if hasInc {
		stepRaw = p.IncreaseBy
	}

	start, err := toNumber("start", p.Start)
	if err != nil {
		return nil, err
	}
	end, err := toNumber("end", p.End)
	if err != nil {
		return nil, err
	}
	step, err := toNumber("step", stepRaw)
	if err != nil {
		return nil, err
	}

	if start.f > end.f {
		return nil, nil
	}
	if hasMul && (step.f <= 1 || start.f <= 0) {
		return nil, fmt.Errorf("multiplier %v from start %v never reaches end %v", stepRaw, p.Start, p.End)
	}
	if hasInc && step.f <= 0 {
		return nil, fmt.Errorf("increase_by %v never reaches end %v", stepRaw, p.End)
	}

	if start.isInt && end.isInt && step.isInt {
		var out []any
		for cur := start.i; cur <= end.i; {
			if len(out) == MaxProgressionValues {
				return nil, fmt.Errorf("progression produces more than %d values", MaxProgressionValues)
			}
			out = append(out, cur)
			// stop before the next value would overflow int
			if hasMul {
				if cur > end.i/step.i {
					break
				}
				cur *= step.i
			} else {
				next := cur + step.i
				if next < cur {
					break
				}
				cur = next
			}
		}
		return out, nil
	}

	var out []any
	for cur := start.f; cur <= end.f; {
		if len(out) == MaxProgressionValues {
			return nil, fmt.Errorf("progression produces more than %d values", MaxProgressionValues)
		}
		out = append(out, cur)
		next := cur + step.f
		if hasMul {
			next = cur * step.f
		}
		if next <= cur {
			return nil, fmt.Errorf("step %v does not advance past %v", stepRaw, cur)
		}
		cur = next
	}
	return out, nil
}

type number struct {
	i     int
	f     float64
	isInt bool
}

func toNumber(field string, v any) (number, error) {
	switch n := v.(type) {
	case int:
		return number{i: n, f: float64(n), isInt: true}, nil
	case int64:
		return number{i: int(n), f: float64(n), isInt: true}, nil
	case float64:
		return number{f: n}, nil
	default:
		return number{}, fmt.Errorf("%s must be a number, got %T", field, v)
	}
}
