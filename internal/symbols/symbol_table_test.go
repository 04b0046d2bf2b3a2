package symbols

import (
	"testing"

	"github.com/funvibe/cubelang/internal/typesystem"
)

func TestLocalsAndScopes(t *testing.T) {
	st := New()
	a := st.DeclareLocal("a", typesystem.Integer)
	if a.Slot != 0 || !a.IsLocal() {
		t.Fatalf("a = %+v, want slot 0", a)
	}

	st.PushScope()
	b := st.DeclareLocal("b", typesystem.Real)
	shadow := st.DeclareLocal("a", typesystem.Bool)
	if b.Slot != 1 || shadow.Slot != 2 {
		t.Fatalf("slots = %d, %d; want 1, 2", b.Slot, shadow.Slot)
	}
	if got, _ := st.Lookup("a"); got.Type != typesystem.Bool {
		t.Errorf("inner a has type %s, want bool", got.Type)
	}
	st.PopScope()

	if _, ok := st.Lookup("b"); ok {
		t.Errorf("b visible after its block closed")
	}
	if got, _ := st.Lookup("a"); got.Slot != 0 {
		t.Errorf("outer a slot = %d after pop", got.Slot)
	}
	if st.Pool().Count() != 1 {
		t.Errorf("live slots = %d, want 1", st.Pool().Count())
	}
	if st.Pool().HighWater() != 3 {
		t.Errorf("high water = %d, want 3", st.Pool().HighWater())
	}

	c := st.DeclareLocal("c", typesystem.Integer)
	if c.Slot != 1 {
		t.Errorf("released slot not reused: c.Slot = %d", c.Slot)
	}
}

func TestGlobals(t *testing.T) {
	st := New()
	st.DeclareGlobal("front", typesystem.Side)
	sym, ok := st.Lookup("front")
	if !ok {
		t.Fatalf("global not found")
	}
	if sym.Slot != NoSlot || sym.IsLocal() || sym.Kind != GlobalSymbol {
		t.Errorf("global = %+v", sym)
	}
	if _, ok := st.Lookup("missing"); ok {
		t.Errorf("undeclared name resolved")
	}
}

func TestFunctionTable(t *testing.T) {
	root := New()
	root.DeclareGlobal("print", typesystem.NewVariadic([]typesystem.Type{typesystem.T}, typesystem.Void))
	root.DeclareLocal("x", typesystem.Integer)
	fnType := typesystem.NewFunction([]typesystem.Type{typesystem.Integer}, typesystem.Integer)
	root.DeclareFunction("f", fnType, 0)

	body := root.EnterFunction(typesystem.Integer)
	if !body.InFunction() || body.ReturnType() != typesystem.Integer {
		t.Fatalf("function table has return type %v", body.ReturnType())
	}
	arg := body.DeclareLocal("n", typesystem.Integer)
	if arg.Slot != 0 {
		t.Errorf("first argument slot = %d, want 0", arg.Slot)
	}

	if _, ok := body.Lookup("x"); ok {
		t.Errorf("outer local visible inside function")
	}
	if sym, ok := body.Lookup("f"); !ok || sym.Kind != FunctionSymbol || sym.Func != 0 {
		t.Errorf("function not visible to its own body: %+v", sym)
	}
	if _, ok := body.Lookup("print"); !ok {
		t.Errorf("globals not shared with function table")
	}

	nested := body.EnterFunction(typesystem.Void)
	if _, ok := nested.Lookup("f"); !ok {
		t.Errorf("outer function not visible two levels down")
	}
	if _, ok := nested.Lookup("n"); ok {
		t.Errorf("enclosing argument visible in nested function")
	}
}

func TestLocalHidesOuterFunction(t *testing.T) {
	root := New()
	root.DeclareFunction("g", typesystem.NewFunction(nil, typesystem.Void), 0)
	mid := root.EnterFunction(typesystem.Void)
	mid.DeclareLocal("g", typesystem.Integer)
	inner := mid.EnterFunction(typesystem.Void)
	if _, ok := inner.Lookup("g"); ok {
		t.Errorf("g resolved through a local that shadows it")
	}
}

func TestTopLevelHasNoReturnType(t *testing.T) {
	st := New()
	if st.InFunction() || st.ReturnType() != nil {
		t.Errorf("top level reports a function context")
	}
	defer func() {
		if recover() == nil {
			t.Errorf("popping the root scope should panic")
		}
	}()
	st.PopScope()
}
