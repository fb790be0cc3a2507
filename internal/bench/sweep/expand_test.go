package sweep

import (
	"errors"
	"math"
	"testing"

	"github.com/DjordjeVuckovic/microbench/internal/apperr"
	"github.com/DjordjeVuckovic/microbench/internal/bench/params"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func parseRules(t *testing.T, doc string) []Rule {
	t.Helper()
	var rules []Rule
	require.NoError(t, yaml.Unmarshal([]byte(doc), &rules))
	return rules
}

func values(sets []*params.Set, key string) []any {
	out := make([]any, 0, len(sets))
	for _, s := range sets {
		v, _ := s.Get(key)
		out = append(out, v)
	}
	return out
}

func TestExpand_Multiplier(t *testing.T) {
	rules := parseRules(t, `
- n_range: {start: 2, end: 8, multiplier: 2}
`)
	sets, err := Expand(rules)
	require.NoError(t, err)
	assert.Equal(t, []any{2, 4, 8}, values(sets, "n"))
	assert.Equal(t, []string{"n"}, sets[0].Keys())
}

func TestProgression_Laws(t *testing.T) {
	t.Run("multiplicative", func(t *testing.T) {
		p := &Progression{Start: 3, End: 1000, Multiplier: 3}
		seq, err := p.Values()
		require.NoError(t, err)
		require.NotEmpty(t, seq)
		for i := 0; i+1 < len(seq); i++ {
			assert.Equal(t, seq[i].(int)*3, seq[i+1])
		}
		last := seq[len(seq)-1].(int)
		assert.LessOrEqual(t, last, 1000)
		assert.Greater(t, last*3, 1000)
	})

	t.Run("additive", func(t *testing.T) {
		p := &Progression{Start: 1, End: 10, IncreaseBy: 4}
		seq, err := p.Values()
		require.NoError(t, err)
		assert.Equal(t, []any{1, 5, 9}, seq)
	})

	t.Run("float inputs yield floats", func(t *testing.T) {
		p := &Progression{Start: 0.5, End: 2, Multiplier: 2}
		seq, err := p.Values()
		require.NoError(t, err)
		assert.Equal(t, []any{0.5, 1.0, 2.0}, seq)
	})

	t.Run("start past end is empty", func(t *testing.T) {
		p := &Progression{Start: 10, End: 1, IncreaseBy: 1}
		seq, err := p.Values()
		require.NoError(t, err)
		assert.Empty(t, seq)
	})

	t.Run("end inclusive", func(t *testing.T) {
		p := &Progression{Start: 4, End: 4, Multiplier: 2}
		seq, err := p.Values()
		require.NoError(t, err)
		assert.Equal(t, []any{4}, seq)
	})
}

func TestProgression_Errors(t *testing.T) {
	tests := []struct {
		name string
		p    Progression
		want string
	}{
		{"no step", Progression{Start: 1, End: 4}, "either multiplier or increase_by"},
		{"both steps", Progression{Start: 1, End: 4, Multiplier: 2, IncreaseBy: 1}, "only one"},
		{"no start", Progression{End: 4, Multiplier: 2}, "no start"},
		{"no end", Progression{Start: 1, Multiplier: 2}, "no end"},
		{"multiplier of one", Progression{Start: 1, End: 4, Multiplier: 1}, "never reaches"},
		{"zero start", Progression{Start: 0, End: 4, Multiplier: 2}, "never reaches"},
		{"non-positive increase", Progression{Start: 1, End: 4, IncreaseBy: 0}, "never reaches"},
		{"non-numeric", Progression{Start: "a", End: 4, IncreaseBy: 1}, "must be a number"},
		{"float increase below precision", Progression{Start: 1e17, End: 2e17, IncreaseBy: 1.0}, "does not advance"},
		{"too many values", Progression{Start: 1, End: math.MaxInt, IncreaseBy: 1}, "more than"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.p.Values()
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestProgression_StopsBeforeOverflow(t *testing.T) {
	t.Run("multiplier", func(t *testing.T) {
		got, err := (&Progression{Start: 1, End: math.MaxInt, Multiplier: 2}).Values()
		require.NoError(t, err)
		require.Len(t, got, 63)
		assert.Equal(t, 1<<62, got[len(got)-1])
	})

	t.Run("increase_by", func(t *testing.T) {
		got, err := (&Progression{Start: math.MaxInt - 1, End: math.MaxInt, IncreaseBy: 5}).Values()
		require.NoError(t, err)
		assert.Equal(t, []any{math.MaxInt - 1}, got)
	})

	t.Run("increase_by hits end exactly", func(t *testing.T) {
		got, err := (&Progression{Start: math.MaxInt - 4, End: math.MaxInt, IncreaseBy: 2}).Values()
		require.NoError(t, err)
		assert.Equal(t, []any{math.MaxInt - 4, math.MaxInt - 2, math.MaxInt}, got)
	})
}

func TestExpand_CartesianProduct(t *testing.T) {
	rules := parseRules(t, `
- m_range: {start: 1, end: 4, multiplier: 2}
  dtype: float32
  k_range: {start: 10, end: 20, increase_by: 10}
`)
	sets, err := Expand(rules)
	require.NoError(t, err)
	require.Len(t, sets, 3*1*2)

	assert.Equal(t, []string{"m", "dtype", "k"}, sets[0].Keys())
	assert.Equal(t, []any{1, 1, 2, 2, 4, 4}, values(sets, "m"))
	assert.Equal(t, []any{10, 20, 10, 20, 10, 20}, values(sets, "k"))
	assert.Equal(t, "float32", values(sets, "dtype")[0])
}

func TestExpand_ConcatenatesRules(t *testing.T) {
	rules := parseRules(t, `
- a_range: {start: 1, end: 3, increase_by: 1}
  b_range: {start: 1, end: 2, increase_by: 1}
- c: x
  d_range: {start: 1, end: 16, multiplier: 4}
`)
	sets, err := Expand(rules)
	require.NoError(t, err)
	assert.Len(t, sets, 3*2+1*3)
	assert.Equal(t, []string{"a", "b"}, sets[0].Keys())
	assert.Equal(t, []string{"c", "d"}, sets[6].Keys())
}

func TestExpand_SameNameKeepsFirstPosition(t *testing.T) {
	rules := parseRules(t, `
- n: 1
  m: 2
  n_range: {start: 5, end: 6, increase_by: 1}
`)
	sets, err := Expand(rules)
	require.NoError(t, err)
	require.Len(t, sets, 2)
	assert.Equal(t, []string{"n", "m"}, sets[0].Keys())
	assert.Equal(t, []any{5, 6}, values(sets, "n"))
}

func TestExpand_EmptyProgressionYieldsNothing(t *testing.T) {
	rules := parseRules(t, `
- a: 1
  b_range: {start: 9, end: 1, increase_by: 1}
`)
	sets, err := Expand(rules)
	require.NoError(t, err)
	assert.Empty(t, sets)
}

func TestExpand_ErrorIsConfig(t *testing.T) {
	rules := parseRules(t, `
- ok: 1
- n_range: {start: 1, end: 8}
`)
	_, err := Expand(rules)
	require.Error(t, err)
	var pe *ProgressionError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "n_range", pe.Key)
	assert.True(t, errors.Is(err, apperr.ErrConfig))
	assert.ErrorContains(t, err, "sweep rule 1")
}

func TestRule_UnmarshalRejectsSequences(t *testing.T) {
	var rules []Rule
	err := yaml.Unmarshal([]byte("- n: [1, 2]"), &rules)
	assert.ErrorContains(t, err, "scalar or a progression")
}

func TestRule_MarshalRoundTrip(t *testing.T) {
	rules := parseRules(t, `
- n_range: {start: 2, end: 8, multiplier: 2}
  dtype: bfloat16
`)
	out, err := yaml.Marshal(rules)
	require.NoError(t, err)
	again := parseRules(t, string(out))
	require.Len(t, again, 1)
	assert.Equal(t, rules[0].Entries, again[0].Entries)
}
