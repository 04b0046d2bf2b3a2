package operators

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/funvibe/cubelang/internal/typesystem"
)

func TestGrammar(t *testing.T) {
	got := Grammar([][]string{{"a", "b"}, {"c"}, {"e", "f", "g"}}, "atom")
	want := `?op_0.3: op_1 | op_0 "a" op_1 -> op_0_0 | op_0 "b" op_1 -> op_0_1
?op_1.2: op_2 | op_1 "c" op_2 -> op_1_0
?op_2.1: atom | op_2 "e" atom -> op_2_0 | op_2 "f" atom -> op_2_1 | op_2 "g" atom -> op_2_2
`
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Grammar() mismatch (-want +got):\n%s", diff)
	}
}

func TestSymbols(t *testing.T) {
	want := [][]string{
		{"xor"}, {"or"}, {"and"}, {"==", "!="},
		{"<", ">", "<=", ">="}, {"+", "-"}, {"*", "/", "%"},
	}
	if diff := cmp.Diff(want, Symbols()); diff != "" {
		t.Errorf("Symbols() mismatch (-want +got):\n%s", diff)
	}
}

func TestApply(t *testing.T) {
	op := func(symbol string) Operator {
		t.Helper()
		for level := range Groups {
			if i := Find(level, symbol); i >= 0 {
				return Groups[level][i]
			}
		}
		t.Fatalf("operator %q not found", symbol)
		return Operator{}
	}

	tests := []struct {
		symbol      string
		left, right typesystem.Type
		want        typesystem.Type
	}{
		{"+", typesystem.Integer, typesystem.Integer, typesystem.Integer},
		{"+", typesystem.Integer, typesystem.Real, typesystem.Real},
		{"+", typesystem.Real, typesystem.Integer, typesystem.Real},
		{"+", typesystem.Bool, typesystem.Integer, nil},
		{"/", typesystem.Integer, typesystem.Integer, typesystem.Real},
		{"%", typesystem.Integer, typesystem.Integer, typesystem.Integer},
		{"%", typesystem.Real, typesystem.Integer, nil},
		{"<", typesystem.Integer, typesystem.Real, typesystem.Bool},
		{"<", typesystem.Color, typesystem.Color, nil},
		{"==", typesystem.Color, typesystem.Color, typesystem.Bool},
		{"==", typesystem.List(typesystem.Integer), typesystem.List(typesystem.Integer), typesystem.Bool},
		{"==", typesystem.Integer, typesystem.Real, nil},
		{"!=", typesystem.Void, typesystem.Void, nil},
		{"and", typesystem.Bool, typesystem.Bool, typesystem.Bool},
		{"xor", typesystem.Bool, typesystem.Integer, nil},
	}
	for _, tt := range tests {
		t.Run(tt.symbol+" "+tt.left.String()+" "+tt.right.String(), func(t *testing.T) {
			got := op(tt.symbol).Apply(tt.left, tt.right)
			if got != tt.want && !(got != nil && tt.want != nil && typesystem.Equal(got, tt.want)) {
				t.Errorf("Apply(%s, %s) = %v, want %v", tt.left, tt.right, got, tt.want)
			}
		})
	}
}

func TestFind(t *testing.T) {
	if Find(3, "!=") != 1 {
		t.Errorf("Find(3, \"!=\") = %d", Find(3, "!="))
	}
	if Find(0, "+") != -1 || Find(len(Groups), "+") != -1 {
		t.Errorf("Find should miss unknown positions")
	}
}
