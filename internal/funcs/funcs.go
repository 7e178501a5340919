// Package funcs provides the cty functions available to plan expressions.
package funcs

import (
	"fmt"
	"math/big"
	"regexp"
	"strings"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

// units maps an ether denomination to its power of ten.
var units = map[string]int{
	"wei":    0,
	"kwei":   3,
	"mwei":   6,
	"gwei":   9,
	"szabo":  12,
	"finney": 15,
	"ether":  18,
}

// decimalAmount matches plain base-10 amounts such as "1", "0.5" or ".5".
var decimalAmount = regexp.MustCompile(`^-?(\d+\.?\d*|\.\d+)$`)

// ToWei converts a decimal amount in the given unit to a wei amount, returned
// as a base-10 string so that it survives round trips through JSON without
// losing precision.
var ToWei = function.New(&function.Spec{
	Params: []function.Parameter{
		{Name: "amount", Type: cty.String},
		{Name: "unit", Type: cty.String},
	},
	Type: function.StaticReturnType(cty.String),
	Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
		wei, err := toWei(args[0].AsString(), args[1].AsString())
		if err != nil {
			return cty.UnknownVal(cty.String), err
		}
		return cty.StringVal(wei), nil
	},
})

func toWei(amount, unit string) (string, error) {
	exp, ok := units[strings.ToLower(unit)]
	if !ok {
		return "", fmt.Errorf("unknown unit %q", unit)
	}

	amount = strings.TrimSpace(amount)
	if !decimalAmount.MatchString(amount) {
		return "", fmt.Errorf("invalid amount %q", amount)
	}
	rat, ok := new(big.Rat).SetString(amount)
	if !ok {
		return "", fmt.Errorf("invalid amount %q", amount)
	}
	if rat.Sign() < 0 {
		return "", fmt.Errorf("amount %q must not be negative", amount)
	}

	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(exp)), nil)
	rat.Mul(rat, new(big.Rat).SetInt(scale))
	if !rat.IsInt() {
		return "", fmt.Errorf("amount %q has more precision than %s allows", amount, unit)
	}
	return rat.Num().String(), nil
}

// Table returns the functions exposed to plan expressions.
func Table() map[string]function.Function {
	return map[string]function.Function{
		"to_wei": ToWei,
		"upper":  stdlib.UpperFunc,
		"lower":  stdlib.LowerFunc,
		"format": stdlib.FormatFunc,
		"concat": stdlib.ConcatFunc,
		"join":   stdlib.JoinFunc,
	}
}
