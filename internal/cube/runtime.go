package cube

import (
	"fmt"
	"io"
	"strings"

	"github.com/funvibe/cubelang/internal/config"
	"github.com/funvibe/cubelang/internal/library"
	"github.com/funvibe/cubelang/internal/typesystem"
	"github.com/funvibe/cubelang/internal/vm"
)

// Runtime connects compiled programs to an Engine.
type Runtime struct {
	engine Engine
	out    io.Writer
}

func NewRuntime(engine Engine, out io.Writer) *Runtime {
	return &Runtime{engine: engine, out: out}
}

// Library returns the names the runtime provides: the cube functions, the
// side and color constants, and the hidden operations cube statements are
// lowered to.
func (rt *Runtime) Library() *library.Library {
	lib := library.New()
	rt.Register(lib)
	return lib
}

// Register adds the runtime's names to lib.
func (rt *Runtime) Register(lib *library.Library) {
	none := []typesystem.Type{}
	lib.AddVariadic(config.PrintFuncName, rt.print, []typesystem.Type{typesystem.T}, typesystem.Void)
	lib.AddFunction(config.ExitFuncName, exit, none, typesystem.Void)
	lib.AddFunction(config.PushOrientationFuncName, action(rt.engine.PushOrientation), none, typesystem.Void)
	lib.AddFunction(config.PopOrientationFuncName, action(rt.engine.PopOrientation), none, typesystem.Void)
	lib.AddFunction(config.SuspendRotationsFuncName, action(rt.engine.SuspendRotations), none, typesystem.Void)
	lib.AddFunction(config.ResumeRotationsFuncName, action(rt.engine.ResumeRotations), none, typesystem.Void)

	for _, s := range vm.Sides {
		lib.AddValue(s.String(), typesystem.Side, s)
	}
	for _, c := range vm.Colors {
		lib.AddValue(c.String(), typesystem.Color, c)
	}

	lib.BindFunction(config.CubeTurnOp, rt.turn)
	lib.BindFunction(config.CubeRotateOp, rt.rotate)
	lib.BindFunction(config.CubeGetColorOp, rt.color)
	lib.BindFunction(config.OrientOp, rt.orient)
}

// OrientParams is the order of the arguments of the hidden orient
// operation: one pattern or none per side, then the side to keep.
func OrientParams() []string {
	names := make([]string, 0, len(vm.Sides)+1)
	for _, s := range vm.Sides {
		names = append(names, s.String())
	}
	return append(names, config.OrientKeepingKey)
}

func action(f func() error) library.Func {
	return func([]vm.Value) (vm.Value, error) { return nil, f() }
}

func exit([]vm.Value) (vm.Value, error) { return nil, vm.ErrTerminate }

func (rt *Runtime) print(args []vm.Value) (vm.Value, error) {
	parts := make([]string, len(args))
	for i, v := range args {
		parts[i] = v.String()
	}
	_, err := fmt.Fprintln(rt.out, strings.Join(parts, " "))
	return nil, err
}

// turn takes the side, the number of quarter turns and the list of layers.
// A layer is an int or a two-element list whose open ends are Ellipsis.
func (rt *Runtime) turn(args []vm.Value) (vm.Value, error) {
	if len(args) != 3 {
		return nil, fmt.Errorf("%s: want 3 arguments, got %d", config.CubeTurnOp, len(args))
	}
	side, ok1 := args[0].(vm.Side)
	amount, ok2 := args[1].(vm.Int)
	indices, ok3 := args[2].(*vm.List)
	if !ok1 || !ok2 || !ok3 {
		return nil, fmt.Errorf("%s: bad arguments %v", config.CubeTurnOp, args)
	}
	t := Turn{Side: side, Amount: int(amount)}
	for _, item := range indices.Items {
		l, err := layer(item)
		if err != nil {
			return nil, err
		}
		t.Layers = append(t.Layers, l)
	}
	return nil, rt.engine.Turn(t)
}

func layer(v vm.Value) (Layer, error) {
	switch x := v.(type) {
	case vm.Int:
		n, err := bound(x)
		return Layer{Start: n, End: n}, err
	case *vm.List:
		if len(x.Items) == 2 {
			start, err := bound(x.Items[0])
			if err != nil {
				return Layer{}, err
			}
			end, err := bound(x.Items[1])
			if err != nil {
				return Layer{}, err
			}
			return Layer{Start: start, End: end}, nil
		}
	}
	return Layer{}, fmt.Errorf("%s: bad layer %s", config.CubeTurnOp, v)
}

func bound(v vm.Value) (int, error) {
	switch x := v.(type) {
	case vm.Ellipsis:
		return 0, nil
	case vm.Int:
		if x < 1 {
			return 0, vm.Errorf(vm.ValueFault, "layer %d is out of range", x)
		}
		return int(x), nil
	}
	return 0, fmt.Errorf("%s: bad layer bound %s", config.CubeTurnOp, v)
}

func (rt *Runtime) rotate(args []vm.Value) (vm.Value, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("%s: want 2 arguments, got %d", config.CubeRotateOp, len(args))
	}
	side, ok1 := args[0].(vm.Side)
	twice, ok2 := args[1].(vm.Bool)
	if !ok1 || !ok2 {
		return nil, fmt.Errorf("%s: bad arguments %v", config.CubeRotateOp, args)
	}
	return nil, rt.engine.Rotate(Rotation{Side: side, Twice: bool(twice)})
}

func (rt *Runtime) color(args []vm.Value) (vm.Value, error) {
	if len(args) != 3 {
		return nil, fmt.Errorf("%s: want 3 arguments, got %d", config.CubeGetColorOp, len(args))
	}
	side, ok1 := args[0].(vm.Side)
	row, ok2 := args[1].(vm.Int)
	col, ok3 := args[2].(vm.Int)
	if !ok1 || !ok2 || !ok3 {
		return nil, fmt.Errorf("%s: bad arguments %v", config.CubeGetColorOp, args)
	}
	size := vm.Int(rt.engine.Size())
	if row < 0 || row >= size || col < 0 || col >= size {
		return nil, vm.Errorf(vm.IndexFault, "cell [%d, %d] is outside of a side of size %d", row, col, size)
	}
	return rt.engine.Color(side, int(row), int(col))
}

// orient takes its arguments in the order of OrientParams; absent ones
// are Nil.
func (rt *Runtime) orient(args []vm.Value) (vm.Value, error) {
	if len(args) != len(vm.Sides)+1 {
		return nil, fmt.Errorf("%s: want %d arguments, got %d", config.OrientOp, len(vm.Sides)+1, len(args))
	}
	req := OrientRequest{Patterns: make(map[vm.Side]*vm.Pattern)}
	for i, s := range vm.Sides {
		if p, ok := args[i].(*vm.Pattern); ok {
			req.Patterns[s] = p
		}
	}
	if keep, ok := args[len(vm.Sides)].(vm.Side); ok {
		req.Keeping = &keep
	}
	found, err := rt.engine.Orient(req)
	if err != nil {
		return nil, err
	}
	return vm.Bool(found), nil
}
