package main

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"
)

// newScriptState returns a Lua state with the console bound as globals:
//
//	gate(bool)         assert or release the gate
//	set(knob, value)   turn a knob
//	get(knob)          read a knob
//	run(ticks)         advance the board
//	output()           current output level
//	stage()            current envelope stage name
//	cmd(line)          evaluate a console command, returning its result
func newScriptState(e *env) *lua.LState {
	L := lua.NewState()
	fns := map[string]lua.LGFunction{
		"gate": func(L *lua.LState) int {
			e.board.SetGate(L.CheckBool(1))
			return 0
		},
		"set": func(L *lua.LState) int {
			if err := e.knobs.Set(L.CheckString(1), L.CheckInt(2)); err != nil {
				L.RaiseError("%v", err)
			}
			return 0
		},
		"get": func(L *lua.LState) int {
			v, err := e.knobs.Get(L.CheckString(1))
			if err != nil {
				L.RaiseError("%v", err)
			}
			L.Push(lua.LNumber(v))
			return 1
		},
		"run": func(L *lua.LState) int {
			if e.realtime {
				L.RaiseError("%v", errRealtime)
			}
			n := L.CheckInt(1)
			if n < 0 {
				L.ArgError(1, "negative tick count")
			}
			e.advance(n, nil)
			return 0
		},
		"output": func(L *lua.LState) int {
			L.Push(lua.LNumber(e.ctrl.Output()))
			return 1
		},
		"stage": func(L *lua.LState) int {
			L.Push(lua.LString(e.ctrl.Stage().String()))
			return 1
		},
		"cmd": func(L *lua.LState) int {
			result, err := e.eval(L.CheckString(1))
			if err != nil {
				L.RaiseError("%v", err)
			}
			L.Push(lua.LString(result))
			return 1
		},
	}
	for name, fn := range fns {
		L.SetGlobal(name, L.NewFunction(fn))
	}
	return L
}

func runScript(e *env, file string) error {
	L := newScriptState(e)
	defer L.Close()
	if err := L.DoFile(file); err != nil {
		return fmt.Errorf("script %s: %w", file, err)
	}
	return nil
}
