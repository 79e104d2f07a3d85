// SPDX-License-Identifier: MIT
//
// The expression evaluation context for attribute values. Dynamic
// attributes get a small function set: uuid(), sequence(name), and a few
// string helpers from the cty stdlib.
package loader

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

// evalContext builds the context attribute expressions evaluate in.
func (l *Loader) evalContext() *hcl.EvalContext {
	return &hcl.EvalContext{
		Functions: map[string]function.Function{
			"uuid":     uuidFunc,
			"sequence": l.sequenceFunc(),
			"upper":    stdlib.UpperFunc,
			"lower":    stdlib.LowerFunc,
			"format":   stdlib.FormatFunc,
		},
	}
}

// uuidFunc returns a fresh random UUID string per evaluation.
var uuidFunc = function.New(&function.Spec{
	Params: []function.Parameter{},
	Type:   function.StaticReturnType(cty.String),
	Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
		return cty.StringVal(uuid.NewString()), nil
	},
})

// sequenceFunc advances the named registered sequence and returns its next
// value. The counter lives in the registry, so every build across every
// factory shares one monotonic stream per name.
func (l *Loader) sequenceFunc() function.Function {
	return function.New(&function.Spec{
		Params: []function.Parameter{
			{Name: "name", Type: cty.String},
		},
		Type: function.StaticReturnType(cty.DynamicPseudoType),
		Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
			seq, err := l.reg.SequenceByName(args[0].AsString())
			if err != nil {
				return cty.NilVal, err
			}
			switch v := seq.Next().(type) {
			case int64:
				return cty.NumberIntVal(v), nil
			case string:
				return cty.StringVal(v), nil
			default:
				return cty.NilVal, fmt.Errorf("sequence %q produced unsupported type %T", args[0].AsString(), v)
			}
		},
	})
}
