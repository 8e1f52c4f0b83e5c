// Package moremath fills the small gaps between Go's math package and the
// exact floating-point semantics the WebAssembly spec requires for min, max,
// and round-to-nearest.
package moremath

import "math"

// WasmCompatMin mirrors math.Min with one change the Wasm spec requires:
// either argument being NaN produces NaN even when the other is an infinity.
// https://github.com/golang/go/blob/1d20a362d0ca4898d77865e314ef6f73582daef0/src/math/dim.go#L74-L91
func WasmCompatMin(x, y float64) float64 {
	switch {
	case math.IsNaN(x) || math.IsNaN(y):
		return math.NaN()
	case math.IsInf(x, -1) || math.IsInf(y, -1):
		return math.Inf(-1)
	case x == 0 && x == y:
		if math.Signbit(x) {
			return x
		}
		return y
	}
	if x < y {
		return x
	}
	return y
}

// WasmCompatMax mirrors math.Max with the same NaN-dominance change as
// WasmCompatMin.
// https://github.com/golang/go/blob/1d20a362d0ca4898d77865e314ef6f73582daef0/src/math/dim.go#L42-L59
func WasmCompatMax(x, y float64) float64 {
	switch {
	case math.IsNaN(x) || math.IsNaN(y):
		return math.NaN()
	case math.IsInf(x, 1) || math.IsInf(y, 1):
		return math.Inf(1)
	case x == 0 && x == y:
		if math.Signbit(x) {
			return y
		}
		return x
	}
	if x > y {
		return x
	}
	return y
}

// WasmCompatNearestF32 implements f32.nearest: round to the nearest integral
// value, ties to even, which is NOT what math.Round does (math.Round ties
// away from zero). math.RoundToEven already implements the Wasm tie-break
// exactly, so no manual adjustment is needed here.
func WasmCompatNearestF32(f float32) float32 {
	if f == 0 || math.IsNaN(float64(f)) || math.IsInf(float64(f), 0) {
		return f
	}
	return float32(math.RoundToEven(float64(f)))
}

// WasmCompatNearestF64 is the float64 counterpart of WasmCompatNearestF32.
func WasmCompatNearestF64(f float64) float64 {
	if f == 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return f
	}
	return math.RoundToEven(f)
}
