package lua

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"
)

// ToGo converts a Lua value to a plain Go value. Tables become
// map[string]any, or []any when the keys form a contiguous 1-based
// sequence. Circular table references convert to nil.
func ToGo(lv lua.LValue) any {
	return togo(lv, make(map[*lua.LTable]bool))
}

func togo(lv lua.LValue, visited map[*lua.LTable]bool) any {
	switch v := lv.(type) {
	case lua.LBool:
		return bool(v)
	case lua.LNumber:
		f := float64(v)
		if f == float64(int64(f)) {
			return int64(f)
		}
		return f
	case lua.LString:
		return string(v)
	case *lua.LTable:
		if visited[v] {
			return nil
		}
		visited[v] = true
		return tableToGo(v, visited)
	case *lua.LUserData:
		return v.Value
	default:
		return nil
	}
}

func tableToGo(t *lua.LTable, visited map[*lua.LTable]bool) any {
	maxN := 0
	count := 0
	isArray := true
	t.ForEach(func(k, _ lua.LValue) {
		count++
		kn, ok := k.(lua.LNumber)
		if !ok || float64(kn) != float64(int(kn)) || int(kn) < 1 {
			isArray = false
			return
		}
		if int(kn) > maxN {
			maxN = int(kn)
		}
	})

	if isArray && maxN > 0 && count == maxN {
		arr := make([]any, maxN)
		for i := 1; i <= maxN; i++ {
			arr[i-1] = togo(t.RawGetInt(i), visited)
		}
		return arr
	}

	m := make(map[string]any, count)
	t.ForEach(func(k, v lua.LValue) {
		m[k.String()] = togo(v, visited)
	})
	return m
}

// ToLua converts a plain Go value to a Lua value allocated on l.
// Unsupported types become userdata.
func ToLua(l *lua.LState, v any) lua.LValue {
	switch val := v.(type) {
	case nil:
		return lua.LNil
	case bool:
		return lua.LBool(val)
	case int:
		return lua.LNumber(val)
	case int64:
		return lua.LNumber(val)
	case uint64:
		return lua.LNumber(val)
	case float64:
		return lua.LNumber(val)
	case string:
		return lua.LString(val)
	case []byte:
		return lua.LString(val)
	case []string:
		t := l.NewTable()
		for i, s := range val {
			t.RawSetInt(i+1, lua.LString(s))
		}
		return t
	case []any:
		t := l.NewTable()
		for i, e := range val {
			t.RawSetInt(i+1, ToLua(l, e))
		}
		return t
	case map[string]any:
		t := l.NewTable()
		for k, e := range val {
			t.RawSetString(k, ToLua(l, e))
		}
		return t
	case lua.LValue:
		return val
	default:
		ud := l.NewUserData()
		ud.Value = v
		return ud
	}
}

// TableString returns the string field key of t.
func TableString(t *lua.LTable, key string) (string, bool) {
	if s, ok := t.RawGetString(key).(lua.LString); ok {
		return string(s), true
	}
	return "", false
}

// TableFunc returns the function field key of t.
func TableFunc(t *lua.LTable, key string) (*lua.LFunction, bool) {
	if f, ok := t.RawGetString(key).(*lua.LFunction); ok {
		return f, true
	}
	return nil, false
}

// TableTable returns the table field key of t.
func TableTable(t *lua.LTable, key string) (*lua.LTable, bool) {
	if sub, ok := t.RawGetString(key).(*lua.LTable); ok {
		return sub, true
	}
	return nil, false
}

// CallMethod invokes fn as a method on self (self is passed as the
// single argument, return values are discarded). The state must already
// be held.
func CallMethod(l *lua.LState, fn *lua.LFunction, self *lua.LTable) error {
	top := l.GetTop()
	l.Push(fn)
	l.Push(self)
	if err := l.PCall(1, 0, nil); err != nil {
		l.SetTop(top)
		return err
	}
	l.SetTop(top)
	return nil
}

// WrapFunc adapts a Go function for registration as a Lua function.
// Arguments are converted with ToGo and the result with ToLua. Errors
// are raised as Lua errors.
func WrapFunc(fn func(args []any) (any, error)) lua.LGFunction {
	return func(l *lua.LState) int {
		n := l.GetTop()
		args := make([]any, n)
		for i := 1; i <= n; i++ {
			args[i-1] = ToGo(l.Get(i))
		}

		out, err := fn(args)
		if err != nil {
			l.RaiseError("%s", err.Error())
			return 0
		}
		if out == nil {
			return 0
		}
		l.Push(ToLua(l, out))
		return 1
	}
}

// AsTable asserts that v is a table.
func AsTable(v lua.LValue) (*lua.LTable, error) {
	t, ok := v.(*lua.LTable)
	if !ok {
		return nil, fmt.Errorf("%w (got %s)", ErrNotTable, v.Type())
	}
	return t, nil
}
