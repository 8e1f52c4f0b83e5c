// Package compile is the pairing stage between a parsed wasm.Module and the
// interpreter: for every function body it runs internal/validate.Function
// for type/structural soundness, then internal/ircode.Compile to produce the
// flat, jump-resolved instruction stream the interpreter actually walks.
package compile

import (
	"fmt"

	"github.com/manhvn135/gowasm/internal/interpreter"
	"github.com/manhvn135/gowasm/internal/ircode"
	"github.com/manhvn135/gowasm/internal/validate"
	"github.com/manhvn135/gowasm/internal/wasm"
)

// Module validates and pre-decodes every function in m, returning the
// shared, read-only unit the interpreter instantiates Contexts from.
func Module(m *wasm.Module) (*interpreter.Module, error) {
	funcs := make([]*ircode.Function, m.FunctionCount())
	for i := 0; i < m.FunctionCount(); i++ {
		idx := uint32(i)

		result, err := validate.Function(m, idx)
		if err != nil {
			return nil, &interpreter.Error{
				Kind:    interpreter.KindValidationFailed,
				Message: fmt.Sprintf("function %d: %s", idx, err),
			}
		}

		fn, err := ircode.Compile(m, idx, result.MaxStackDepth, result.Branches)
		if err != nil {
			return nil, &interpreter.Error{
				Kind:    interpreter.KindValidationFailed,
				Message: fmt.Sprintf("function %d: %s", idx, err),
			}
		}
		funcs[i] = fn
	}
	return interpreter.NewModule(m, funcs), nil
}
