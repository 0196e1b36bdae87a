// Package plugin hosts Lua extension scripts. A mod's plugins/ dir may
// register custom effect kinds; the engine dispatches unknown effect
// types to them before falling back to a silent skip.
package plugin

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/seika-games/modcore/engine/effects"
	"github.com/seika-games/modcore/engine/state"
	"github.com/seika-games/modcore/engine/stats"
	"github.com/seika-games/modcore/types"
)

// Host owns one Lua state shared by every plugin of a mod. Not safe
// for concurrent use; the game loop is single-threaded.
type Host struct {
	L   *lua.LState
	fns map[string]*lua.LFunction
}

// NewHost creates an empty plugin host.
func NewHost() *Host {
	h := &Host{
		L:   lua.NewState(),
		fns: map[string]*lua.LFunction{},
	}
	h.registerAPI()
	return h
}

// Close releases the Lua state.
func (h *Host) Close() {
	h.L.Close()
}

// registerAPI installs the registration globals scripts call at load time.
func (h *Host) registerAPI() {
	// register_effect("kind", function(ctx, effect) ... end)
	h.L.SetGlobal("register_effect", h.L.NewFunction(func(L *lua.LState) int {
		kind := L.CheckString(1)
		fn := L.CheckFunction(2)
		h.fns[kind] = fn
		return 0
	}))
}

// LoadDir runs every .lua script under dir in name order. A missing
// directory is not an error; mods without plugins are the common case.
func (h *Host) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("plugin: reading %s: %w", dir, err)
	}
	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".lua") {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	for _, name := range names {
		if err := h.L.DoFile(filepath.Join(dir, name)); err != nil {
			return fmt.Errorf("plugin: %s: %w", name, err)
		}
	}
	return nil
}

// Handlers returns an effect handler per registered kind, ready to be
// passed to the engine.
func (h *Host) Handlers() map[string]effects.Handler {
	out := make(map[string]effects.Handler, len(h.fns))
	for kind, fn := range h.fns {
		out[kind] = h.handler(fn)
	}
	return out
}

func (h *Host) handler(fn *lua.LFunction) effects.Handler {
	return func(eff types.Effect, res *effects.Result, it *effects.Interpreter) {
		ctx := h.newContext(res, it)
		err := h.L.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true}, ctx, h.effectTable(eff))
		if err != nil {
			res.AddMessage(fmt.Sprintf("[plugin error: %v]", err))
		}
	}
}

// newContext builds the per-call API table handed to plugin functions.
func (h *Host) newContext(res *effects.Result, it *effects.Interpreter) *lua.LTable {
	L := h.L
	ctx := L.NewTable()

	set := func(name string, fn lua.LGFunction) {
		ctx.RawSetString(name, L.NewFunction(fn))
	}

	set("message", func(L *lua.LState) int {
		res.AddMessage(L.CheckString(1))
		return 0
	})
	set("navigate", func(L *lua.LState) int {
		res.NavigationTarget = L.CheckString(1)
		return 0
	})
	set("get_flag", func(L *lua.LState) int {
		L.Push(toLValue(L, state.GetFlag(it.State, L.CheckString(1))))
		return 1
	})
	set("set_flag", func(L *lua.LState) int {
		it.State.Player.Flags[L.CheckString(1)] = fromLValue(L.Get(2))
		return 0
	})
	set("get_stat", func(L *lua.LState) int {
		L.Push(lua.LNumber(stats.Get(&it.State.Player, L.CheckString(1))))
		return 1
	})
	set("modify_stat", func(L *lua.LState) int {
		stats.Modify(&it.State.Player, L.CheckString(1), L.CheckString(2), L.CheckInt(3))
		return 0
	})
	set("item_count", func(L *lua.LState) int {
		L.Push(lua.LNumber(state.ItemCount(it.State, L.CheckString(1))))
		return 1
	})
	set("add_item", func(L *lua.LState) int {
		state.AddItem(it.State, L.CheckString(1), L.OptInt(2, 1))
		return 0
	})
	set("remove_item", func(L *lua.LState) int {
		L.Push(lua.LBool(state.RemoveItem(it.State, L.CheckString(1), L.OptInt(2, 1))))
		return 1
	})
	set("current_node", func(L *lua.LState) int {
		L.Push(lua.LString(it.State.CurrentNode))
		return 1
	})
	set("roll", func(L *lua.LState) int {
		L.Push(lua.LNumber(it.RNG.Roll(L.CheckInt(1))))
		return 1
	})

	return ctx
}

// effectTable converts the effect record into a Lua table so plugins
// can read any field content put on it.
func (h *Host) effectTable(eff types.Effect) *lua.LTable {
	L := h.L
	tbl := L.NewTable()
	setStr := func(key, val string) {
		if val != "" {
			tbl.RawSetString(key, lua.LString(val))
		}
	}
	setStr("type", eff.Type)
	setStr("target", eff.Target)
	setStr("text", eff.Text)
	setStr("item", eff.Item)
	setStr("pool", eff.Pool)
	setStr("flag", eff.Flag)
	setStr("stat", eff.Stat)
	setStr("operator", eff.Operator)
	setStr("node", eff.Node)
	setStr("new_state", eff.NewState)
	setStr("object", eff.Object)
	setStr("sequence", eff.Sequence)
	setStr("reason", eff.Reason)
	setStr("ending", eff.Ending)
	if eff.Count != 0 {
		tbl.RawSetString("count", lua.LNumber(eff.Count))
	}
	if eff.Amount != 0 {
		tbl.RawSetString("amount", lua.LNumber(eff.Amount))
	}
	if eff.Damage != 0 {
		tbl.RawSetString("damage", lua.LNumber(eff.Damage))
	}
	if eff.Value != nil {
		tbl.RawSetString("value", toLValue(L, eff.Value))
	}
	return tbl
}

func toLValue(L *lua.LState, v any) lua.LValue {
	switch x := v.(type) {
	case nil:
		return lua.LNil
	case bool:
		return lua.LBool(x)
	case int:
		return lua.LNumber(x)
	case int64:
		return lua.LNumber(x)
	case float64:
		return lua.LNumber(x)
	case string:
		return lua.LString(x)
	}
	return lua.LString(fmt.Sprint(v))
}

func fromLValue(v lua.LValue) any {
	switch x := v.(type) {
	case lua.LBool:
		return bool(x)
	case lua.LNumber:
		if float64(x) == float64(int(x)) {
			return int(x)
		}
		return float64(x)
	case lua.LString:
		return string(x)
	}
	return nil
}
