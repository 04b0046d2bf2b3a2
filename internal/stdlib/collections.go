package stdlib

import (
	"github.com/funvibe/cubelang/internal/library"
	"github.com/funvibe/cubelang/internal/typesystem"
	"github.com/funvibe/cubelang/internal/vm"
)

func registerCollections(lib *library.Library) {
	lib.AddFunction("size", size, params(listT), typesystem.Integer)
	lib.AddFunction("size", size, params(setT), typesystem.Integer)

	lib.AddFunction("add", add, params(setT, elem), typesystem.Void)
	lib.AddFunction("remove", remove, params(setT, elem), typesystem.Bool)

	lib.AddFunction("contains", contains, params(listT, elem), typesystem.Bool)
	lib.AddFunction("contains", contains, params(setT, elem), typesystem.Bool)

	lib.AddFunction("clear", clearCollection, params(listT), typesystem.Void)
	lib.AddFunction("clear", clearCollection, params(setT), typesystem.Void)

	lib.AddFunction("add_first", addFirst, params(listT, elem), typesystem.Void)
	lib.AddFunction("add_last", addLast, params(listT, elem), typesystem.Void)
	lib.AddFunction("add_at", addAt, params(listT, typesystem.Integer, elem), typesystem.Void)
	lib.AddFunction("remove_first", removeFirst, params(listT), elem)
	lib.AddFunction("remove_last", removeLast, params(listT), elem)
	lib.AddFunction("remove_at", removeAt, params(listT, typesystem.Integer), elem)
	lib.AddFunction("new_list", newList, params(typesystem.Integer, elem), listT)
	lib.AddFunction("index_of", indexOf, params(listT, elem), typesystem.Integer)
}

func size(args []vm.Value) (vm.Value, error) {
	if s, ok := args[0].(*vm.Set); ok {
		return vm.Int(s.Len()), nil
	}
	l, err := listArg("size", args, 0)
	if err != nil {
		return nil, err
	}
	return vm.Int(len(l.Items)), nil
}

func add(args []vm.Value) (vm.Value, error) {
	s, err := setArg("add", args, 0)
	if err != nil {
		return nil, err
	}
	v, err := valueArg("add", args, 1)
	if err != nil {
		return nil, err
	}
	_, err = s.Add(v)
	return nil, err
}

func remove(args []vm.Value) (vm.Value, error) {
	s, err := setArg("remove", args, 0)
	if err != nil {
		return nil, err
	}
	v, err := valueArg("remove", args, 1)
	if err != nil {
		return nil, err
	}
	removed, err := s.Remove(v)
	if err != nil {
		return nil, err
	}
	return vm.Bool(removed), nil
}

func contains(args []vm.Value) (vm.Value, error) {
	v, err := valueArg("contains", args, 1)
	if err != nil {
		return nil, err
	}
	if s, ok := args[0].(*vm.Set); ok {
		found, err := s.Contains(v)
		return vm.Bool(found), err
	}
	l, err := listArg("contains", args, 0)
	if err != nil {
		return nil, err
	}
	return vm.Bool(find(l, v) >= 0), nil
}

func clearCollection(args []vm.Value) (vm.Value, error) {
	if s, ok := args[0].(*vm.Set); ok {
		s.Clear()
		return nil, nil
	}
	l, err := listArg("clear", args, 0)
	if err != nil {
		return nil, err
	}
	l.Items = nil
	return nil, nil
}

func addFirst(args []vm.Value) (vm.Value, error) {
	l, err := listArg("add_first", args, 0)
	if err != nil {
		return nil, err
	}
	v, err := valueArg("add_first", args, 1)
	if err != nil {
		return nil, err
	}
	insert(l, 0, v)
	return nil, nil
}

func addLast(args []vm.Value) (vm.Value, error) {
	l, err := listArg("add_last", args, 0)
	if err != nil {
		return nil, err
	}
	v, err := valueArg("add_last", args, 1)
	if err != nil {
		return nil, err
	}
	l.Items = append(l.Items, v)
	return nil, nil
}

// addAt inserts before index. Negative indices count from the end and
// indices past either end are clamped.
func addAt(args []vm.Value) (vm.Value, error) {
	l, err := listArg("add_at", args, 0)
	if err != nil {
		return nil, err
	}
	index, err := intArg("add_at", args, 1)
	if err != nil {
		return nil, err
	}
	v, err := valueArg("add_at", args, 2)
	if err != nil {
		return nil, err
	}
	n := len(l.Items)
	i := int(index)
	if i < 0 {
		i += n
	}
	switch {
	case i < 0:
		i = 0
	case i > n:
		i = n
	}
	insert(l, i, v)
	return nil, nil
}

func removeFirst(args []vm.Value) (vm.Value, error) {
	l, err := listArg("remove_first", args, 0)
	if err != nil {
		return nil, err
	}
	return pop(l, vm.Int(0))
}

func removeLast(args []vm.Value) (vm.Value, error) {
	l, err := listArg("remove_last", args, 0)
	if err != nil {
		return nil, err
	}
	return pop(l, vm.Int(-1))
}

func removeAt(args []vm.Value) (vm.Value, error) {
	l, err := listArg("remove_at", args, 0)
	if err != nil {
		return nil, err
	}
	index, err := intArg("remove_at", args, 1)
	if err != nil {
		return nil, err
	}
	return pop(l, index)
}

// newList fills a list of n elements with v. A negative n gives an empty
// list.
func newList(args []vm.Value) (vm.Value, error) {
	n, err := intArg("new_list", args, 0)
	if err != nil {
		return nil, err
	}
	v, err := valueArg("new_list", args, 1)
	if err != nil {
		return nil, err
	}
	if n < 0 {
		n = 0
	}
	items := make([]vm.Value, n)
	for i := range items {
		items[i] = v
	}
	return vm.NewList(items...), nil
}

func indexOf(args []vm.Value) (vm.Value, error) {
	l, err := listArg("index_of", args, 0)
	if err != nil {
		return nil, err
	}
	v, err := valueArg("index_of", args, 1)
	if err != nil {
		return nil, err
	}
	return vm.Int(find(l, v)), nil
}

func find(l *vm.List, v vm.Value) int {
	for i, item := range l.Items {
		if vm.Equal(item, v) {
			return i
		}
	}
	return -1
}

func insert(l *vm.List, i int, v vm.Value) {
	l.Items = append(l.Items, nil)
	copy(l.Items[i+1:], l.Items[i:])
	l.Items[i] = v
}

func pop(l *vm.List, index vm.Int) (vm.Value, error) {
	if len(l.Items) == 0 {
		return nil, vm.Errorf(vm.IndexFault, "pop from empty list")
	}
	i, err := vm.ListIndex(l, index)
	if err != nil {
		return nil, err
	}
	v := l.Items[i]
	l.Items = append(l.Items[:i], l.Items[i+1:]...)
	return v, nil
}
