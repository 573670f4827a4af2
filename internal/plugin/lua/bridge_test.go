package lua

import (
	"errors"
	"reflect"
	"testing"

	lua "github.com/yuin/gopher-lua"
)

func TestToGoScalars(t *testing.T) {
	tests := []struct {
		name string
		in   lua.LValue
		want any
	}{
		{"bool", lua.LBool(true), true},
		{"int", lua.LNumber(7), int64(7)},
		{"float", lua.LNumber(2.5), 2.5},
		{"string", lua.LString("s"), "s"},
		{"nil", lua.LNil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ToGo(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ToGo(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestToGoTable(t *testing.T) {
	rt := NewRuntime()
	defer rt.Close()

	var got any
	err := rt.Do(func(l *lua.LState) error {
		if err := l.DoString(`v = { name = "x", nums = {1, 2, 3} }`); err != nil {
			return err
		}
		got = ToGo(l.GetGlobal("v"))
		return nil
	})
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}

	m, ok := got.(map[string]any)
	if !ok {
		t.Fatalf("ToGo() = %T, want map[string]any", got)
	}
	if m["name"] != "x" {
		t.Errorf("name = %v, want x", m["name"])
	}
	want := []any{int64(1), int64(2), int64(3)}
	if !reflect.DeepEqual(m["nums"], want) {
		t.Errorf("nums = %v, want %v", m["nums"], want)
	}
}

func TestToGoCircularTable(t *testing.T) {
	rt := NewRuntime()
	defer rt.Close()

	err := rt.Do(func(l *lua.LState) error {
		if err := l.DoString(`v = {}; v.self = v`); err != nil {
			return err
		}
		got := ToGo(l.GetGlobal("v"))
		m, ok := got.(map[string]any)
		if !ok {
			t.Fatalf("ToGo() = %T, want map[string]any", got)
		}
		if m["self"] != nil {
			t.Errorf("self = %v, want nil", m["self"])
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
}

func TestToLuaRoundTrip(t *testing.T) {
	rt := NewRuntime()
	defer rt.Close()

	in := map[string]any{
		"s":    "str",
		"n":    int64(9),
		"f":    1.5,
		"b":    true,
		"list": []any{"a", "b"},
	}
	err := rt.Do(func(l *lua.LState) error {
		got := ToGo(ToLua(l, in))
		if !reflect.DeepEqual(got, in) {
			t.Errorf("round trip = %#v, want %#v", got, in)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
}

func TestTableAccessors(t *testing.T) {
	rt := NewRuntime()
	defer rt.Close()

	err := rt.Do(func(l *lua.LState) error {
		if err := l.DoString(`v = { s = "str", f = function() end, t = {} }`); err != nil {
			return err
		}
		tbl := l.GetGlobal("v").(*lua.LTable)

		if s, ok := TableString(tbl, "s"); !ok || s != "str" {
			t.Errorf("TableString(s) = %q, %v", s, ok)
		}
		if _, ok := TableString(tbl, "f"); ok {
			t.Error("TableString(f) ok = true, want false")
		}
		if _, ok := TableFunc(tbl, "f"); !ok {
			t.Error("TableFunc(f) ok = false, want true")
		}
		if _, ok := TableFunc(tbl, "missing"); ok {
			t.Error("TableFunc(missing) ok = true, want false")
		}
		if _, ok := TableTable(tbl, "t"); !ok {
			t.Error("TableTable(t) ok = false, want true")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
}

func TestCallMethod(t *testing.T) {
	rt := NewRuntime()
	defer rt.Close()

	err := rt.Do(func(l *lua.LState) error {
		code := `v = { hits = 0 }
			function v.bump(self) self.hits = self.hits + 1 end
			function v.fail(self) error("nope") end`
		if err := l.DoString(code); err != nil {
			return err
		}
		tbl := l.GetGlobal("v").(*lua.LTable)

		fn, _ := TableFunc(tbl, "bump")
		if err := CallMethod(l, fn, tbl); err != nil {
			t.Fatalf("CallMethod(bump) error = %v", err)
		}
		if hits := tbl.RawGetString("hits").(lua.LNumber); hits != 1 {
			t.Errorf("hits = %v, want 1", hits)
		}

		bad, _ := TableFunc(tbl, "fail")
		if err := CallMethod(l, bad, tbl); err == nil {
			t.Error("CallMethod(fail) error = nil, want error")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
}

func TestWrapFunc(t *testing.T) {
	rt := NewRuntime()
	defer rt.Close()

	err := rt.RegisterModule("m", map[string]lua.LGFunction{
		"double": WrapFunc(func(args []any) (any, error) {
			n, _ := args[0].(int64)
			return n * 2, nil
		}),
	})
	if err != nil {
		t.Fatalf("RegisterModule() error = %v", err)
	}

	err = rt.Do(func(l *lua.LState) error {
		if err := l.DoString(`r = m.double(21)`); err != nil {
			return err
		}
		if r := l.GetGlobal("r").(lua.LNumber); r != 42 {
			t.Errorf("r = %v, want 42", r)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
}

func TestAsTable(t *testing.T) {
	rt := NewRuntime()
	defer rt.Close()

	err := rt.Do(func(l *lua.LState) error {
		if _, err := AsTable(l.NewTable()); err != nil {
			t.Errorf("AsTable(table) error = %v", err)
		}
		if _, err := AsTable(lua.LString("x")); !errors.Is(err, ErrNotTable) {
			t.Errorf("AsTable(string) error = %v, want ErrNotTable", err)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
}
