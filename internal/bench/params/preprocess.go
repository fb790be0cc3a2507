package params

import (
	"fmt"
	"strings"

	"github.com/DjordjeVuckovic/microbench/internal/apperr"
)

const (
	DTypeKey     = "dtype"
	MirrorPrefix = "SAME_AS_"
)

type UnsupportedDtypeError struct {
	Value any
}

func (e *UnsupportedDtypeError) Error() string {
	return fmt.Sprintf("unsupported dtype: %v", e.Value)
}

func (e *UnsupportedDtypeError) Is(target error) bool { return target == apperr.ErrConfig }

type MissingMirrorTargetError struct {
	Key    string
	Target string
}

func (e *MissingMirrorTargetError) Error() string {
	return fmt.Sprintf("parameter %q mirrors %q, which is not in the parameter set", e.Key, e.Target)
}

func (e *MissingMirrorTargetError) Is(target error) bool { return target == apperr.ErrConfig }

// Preprocess resolves the dtype symbol and SAME_AS_<key> references of s in
// place. Mirrors are resolved in a single pass over the keys in order, so a
// mirror of a mirror sees whatever the target holds at that moment.
func Preprocess(s *Set) error {
	if v, ok := s.Get(DTypeKey); ok {
		switch d := v.(type) {
		case DType:
			if d == Invalid {
				return &UnsupportedDtypeError{Value: d}
			}
		case string:
			resolved, ok := LookupDType(d)
			if !ok {
				return &UnsupportedDtypeError{Value: d}
			}
			s.Put(DTypeKey, resolved)
		default:
			return &UnsupportedDtypeError{Value: v}
		}
	}

	for _, key := range s.Keys() {
		str, ok := s.values[key].(string)
		if !ok || !strings.HasPrefix(str, MirrorPrefix) {
			continue
		}
		target := strings.TrimPrefix(str, MirrorPrefix)
		v, ok := s.Get(target)
		if !ok {
			return &MissingMirrorTargetError{Key: key, Target: target}
		}
		s.Put(key, v)
	}
	return nil
}

// PreprocessAll preprocesses every set, reporting the index of the first
// failure.
func PreprocessAll(sets []*Set) error {
	for i, s := range sets {
		if err := Preprocess(s); err != nil {
			return fmt.Errorf("parameter set %d %s: %w", i, s, err)
		}
	}
	return nil
}
