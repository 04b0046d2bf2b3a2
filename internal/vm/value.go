package vm

import (
	"math"
	"strconv"
	"strings"
)

// Value is anything a program can hold in a slot.
type Value interface {
	String() string
}

type Int int64

func (v Int) String() string { return strconv.FormatInt(int64(v), 10) }

type Real float64

func (v Real) String() string {
	f := float64(v)
	if f == math.Trunc(f) && math.Abs(f) < 1e16 {
		return strconv.FormatFloat(f, 'f', 1, 64)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

type Bool bool

func (v Bool) String() string {
	if v {
		return "true"
	}
	return "false"
}

// Nil is the value of void expressions and of an unset pattern.
type Nil struct{}

func (Nil) String() string { return "none" }

type Color uint8

const (
	White Color = iota
	Yellow
	Red
	Orange
	Green
	Blue
)

var colorNames = [...]string{"white", "yellow", "red", "orange", "green", "blue"}

func (c Color) String() string {
	if int(c) < len(colorNames) {
		return colorNames[c]
	}
	return "color(" + strconv.Itoa(int(c)) + ")"
}

// Colors lists every color in declaration order.
var Colors = []Color{White, Yellow, Red, Orange, Green, Blue}

// ColorFromLetter maps the letters used in pattern literals to colors.
func ColorFromLetter(r rune) (Color, bool) {
	switch r {
	case 'W':
		return White, true
	case 'Y':
		return Yellow, true
	case 'R':
		return Red, true
	case 'O':
		return Orange, true
	case 'G':
		return Green, true
	case 'B':
		return Blue, true
	}
	return 0, false
}

type Side uint8

const (
	Front Side = iota
	Back
	Left
	Right
	Top
	Bottom
)

var sideNames = [...]string{"front", "back", "left", "right", "top", "bottom"}

func (s Side) String() string {
	if int(s) < len(sideNames) {
		return sideNames[s]
	}
	return "side(" + strconv.Itoa(int(s)) + ")"
}

// Sides lists every side in declaration order.
var Sides = []Side{Front, Back, Left, Right, Top, Bottom}

// SideFromLetter maps move letters to the side they turn.
func SideFromLetter(r rune) (Side, bool) {
	switch r {
	case 'F':
		return Front, true
	case 'B':
		return Back, true
	case 'L':
		return Left, true
	case 'R':
		return Right, true
	case 'U':
		return Top, true
	case 'D':
		return Bottom, true
	}
	return 0, false
}

// Letter is the move letter of the side.
func (s Side) Letter() string {
	return [...]string{"F", "B", "L", "R", "U", "D"}[s]
}

// List is a mutable sequence shared by reference.
type List struct {
	Items []Value
}

func NewList(items ...Value) *List { return &List{Items: items} }

func (l *List) String() string {
	return "[" + joinValues(l.Items) + "]"
}

// Set keeps its elements in insertion order. Only scalar values can be
// elements.
type Set struct {
	items []Value
	index map[Value]int
}

func NewSet() *Set { return &Set{index: make(map[Value]int)} }

func (s *Set) String() string {
	return "{" + joinValues(s.items) + "}"
}

func (s *Set) Len() int { return len(s.items) }
func (s *Set) Items() []Value { return s.items }

func (s *Set) Contains(v Value) (bool, error) {
	k, err := setKey(v)
	if err != nil {
		return false, err
	}
	_, ok := s.index[k]
	return ok, nil
}

// Add inserts v and reports whether it was not present before.
func (s *Set) Add(v Value) (bool, error) {
	k, err := setKey(v)
	if err != nil {
		return false, err
	}
	if _, ok := s.index[k]; ok {
		return false, nil
	}
	s.index[k] = len(s.items)
	s.items = append(s.items, v)
	return true, nil
}

// Remove deletes v and reports whether it was present.
func (s *Set) Remove(v Value) (bool, error) {
	k, err := setKey(v)
	if err != nil {
		return false, err
	}
	i, ok := s.index[k]
	if !ok {
		return false, nil
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	delete(s.index, k)
	for j := i; j < len(s.items); j++ {
		jk, _ := setKey(s.items[j])
		s.index[jk] = j
	}
	return true, nil
}

func (s *Set) Clear() {
	s.items = nil
	s.index = make(map[Value]int)
}

// setKey normalizes numbers so that 1 and 1.0 are the same element. An
// Int that has no exact Real counterpart stays an Int.
func setKey(v Value) (Value, error) {
	switch x := v.(type) {
	case Int:
		if r := Real(x); r < 1<<63 && Int(r) == x {
			return r, nil
		}
		return x, nil
	case Real, Bool, Color, Side, Nil:
		return x, nil
	}
	return nil, Errorf(ValueFault, "unhashable value %s", v)
}

// Cell is one position of a pattern: a fixed color, a named variable that
// must match consistently, or a wildcard.
type Cell struct {
	Color    Color
	Fixed    bool
	Variable string
}

func (c Cell) String() string {
	switch {
	case c.Fixed:
		return strings.ToUpper(c.Color.String()[:1])
	case c.Variable != "":
		return c.Variable
	}
	return "-"
}

type Pattern struct {
	Rows [][]Cell
}

func (p *Pattern) String() string {
	rows := make([]string, len(p.Rows))
	for i, row := range p.Rows {
		var sb strings.Builder
		for _, c := range row {
			sb.WriteString(c.String())
		}
		rows[i] = sb.String()
	}
	return "{" + strings.Join(rows, "/") + "}"
}

// Ellipsis marks an open end of a layer range in turn indices.
type Ellipsis struct{}

func (Ellipsis) String() string { return "..." }

// FunctionValue refers to a function of the program's function table.
type FunctionValue struct {
	Index int
	Name  string
}

func (f *FunctionValue) String() string { return "<function " + f.Name + ">" }

// Operation is an external operation bound by the host.
type Operation struct {
	Name string
	Fn   func(args []Value) (Value, error)
}

func (o *Operation) String() string { return "<operation " + o.Name + ">" }

type iterator struct {
	items []Value
	pos   int
}

func (it *iterator) String() string { return "<iterator>" }

func joinValues(items []Value) string {
	parts := make([]string, len(items))
	for i, v := range items {
		parts[i] = v.String()
	}
	return strings.Join(parts, ", ")
}

// Equal compares values structurally. Integers and reals compare by
// numeric value.
func Equal(a, b Value) bool {
	switch x := a.(type) {
	case Int:
		switch y := b.(type) {
		case Int:
			return x == y
		case Real:
			return Real(x) == y
		}
		return false
	case Real:
		switch y := b.(type) {
		case Int:
			return x == Real(y)
		case Real:
			return x == y
		}
		return false
	case *List:
		y, ok := b.(*List)
		if !ok || len(x.Items) != len(y.Items) {
			return false
		}
		for i := range x.Items {
			if !Equal(x.Items[i], y.Items[i]) {
				return false
			}
		}
		return true
	case *Set:
		y, ok := b.(*Set)
		if !ok || x.Len() != y.Len() {
			return false
		}
		for _, v := range x.items {
			if has, _ := y.Contains(v); !has {
				return false
			}
		}
		return true
	case *Pattern:
		y, ok := b.(*Pattern)
		return ok && x.String() == y.String()
	case *FunctionValue:
		y, ok := b.(*FunctionValue)
		return ok && x.Index == y.Index
	case *Operation:
		y, ok := b.(*Operation)
		return ok && x == y
	}
	return a == b
}

// ToReal widens an integer or real value.
func ToReal(v Value) (Real, bool) {
	switch x := v.(type) {
	case Int:
		return Real(x), true
	case Real:
		return x, true
	}
	return 0, false
}
