package funcs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func TestToWei(t *testing.T) {
	testCases := []struct {
		amount string
		unit   string
		want   string
	}{
		{"1000000", "ether", "1000000000000000000000000"},
		{"1", "gwei", "1000000000"},
		{"1.5", "ether", "1500000000000000000"},
		{"0", "ether", "0"},
		{"42", "wei", "42"},
		{"2", "ETHER", "2000000000000000000"},
	}

	for _, tc := range testCases {
		t.Run(tc.amount+" "+tc.unit, func(t *testing.T) {
			got, err := ToWei.Call([]cty.Value{cty.StringVal(tc.amount), cty.StringVal(tc.unit)})
			require.NoError(t, err)
			assert.Equal(t, tc.want, got.AsString())
		})
	}
}

func TestToWei_Errors(t *testing.T) {
	testCases := []struct {
		name    string
		amount  string
		unit    string
		wantErr string
	}{
		{"unknown unit", "1", "dogecoin", `unknown unit "dogecoin"`},
		{"not a number", "lots", "ether", `invalid amount "lots"`},
		{"negative", "-1", "ether", "must not be negative"},
		{"too precise", "0.5", "wei", "more precision"},
		{"hex", "0x10", "wei", `invalid amount "0x10"`},
		{"fraction", "1/2", "ether", `invalid amount "1/2"`},
		{"exponent", "1e18", "wei", `invalid amount "1e18"`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ToWei.Call([]cty.Value{cty.StringVal(tc.amount), cty.StringVal(tc.unit)})
			assert.ErrorContains(t, err, tc.wantErr)
		})
	}
}

func TestTable(t *testing.T) {
	table := Table()
	for _, name := range []string{"to_wei", "upper", "format", "join"} {
		assert.Contains(t, table, name)
	}

	got, err := table["upper"].Call([]cty.Value{cty.StringVal("coin")})
	require.NoError(t, err)
	assert.Equal(t, "COIN", got.AsString())
}
