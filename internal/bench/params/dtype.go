package params

import (
	"fmt"
	"math"

	"github.com/x448/float16"
)

// DType is a concrete numeric element type a benchmark operates on.
type DType int

const (
	Invalid DType = iota
	BFloat16
	Float16
	Float32
	Int32
)

var dtypeTable = map[string]DType{
	"bfloat16": BFloat16,
	"float16":  Float16,
	"float32":  Float32,
	"int32":    Int32,
}

// LookupDType resolves a dtype symbol.
func LookupDType(name string) (DType, bool) {
	d, ok := dtypeTable[name]
	return d, ok
}

func (d DType) String() string {
	switch d {
	case BFloat16:
		return "bfloat16"
	case Float16:
		return "float16"
	case Float32:
		return "float32"
	case Int32:
		return "int32"
	default:
		return "invalid"
	}
}

// MarshalText writes the dtype symbol.
func (d DType) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *DType) UnmarshalText(text []byte) error {
	v, ok := LookupDType(string(text))
	if !ok {
		return fmt.Errorf("unknown dtype %q", text)
	}
	*d = v
	return nil
}

// Size is the element width in bytes.
func (d DType) Size() int {
	switch d {
	case BFloat16, Float16:
		return 2
	case Float32, Int32:
		return 4
	default:
		return 0
	}
}

// Quantize rounds f to the nearest value representable in d.
func (d DType) Quantize(f float32) float32 {
	switch d {
	case BFloat16:
		bits := math.Float32bits(f)
		// round to nearest even on the dropped 16 bits
		bits += 0x7FFF + ((bits >> 16) & 1)
		return math.Float32frombits(bits &^ 0xFFFF)
	case Float16:
		return float16.Fromfloat32(f).Float32()
	case Int32:
		return float32(int32(f))
	default:
		return f
	}
}
