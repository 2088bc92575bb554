// Package filterscript embeds the user-programmable track filter. A filter
// is Lua source text defining a function filter(track) that returns true to
// exclude the track from sync. Scripts are compiled and checked once, then
// evaluated per track; the engine never sees the interpreter internals.
package filterscript

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	lua "github.com/yuin/gopher-lua"
	"github.com/yuin/gopher-lua/parse"
)

// EntryPoint is the function a filter script must define.
const EntryPoint = "filter"

// ErrCompile wraps script parse/load failures detected before persisting.
var ErrCompile = errors.New("filter script compile error")

// ErrRuntime wraps evaluation failures raised while running the predicate.
var ErrRuntime = errors.New("filter script runtime error")

// TrackAttributes is the view of a track a predicate may observe. Store
// internals (surrogate id, lifecycle state) are deliberately absent.
type TrackAttributes struct {
	Title      string
	Artist     string
	Album      string
	Number     int64
	FilePath   string
	DiscNumber int64
	DiscTotal  int64
	Extension  string
}

// Script is a compiled, validated predicate. It owns a private interpreter
// state and is not safe for concurrent evaluation; the engine calls it
// sequentially, one track at a time.
type Script struct {
	state *lua.LState
	fn    lua.LValue
}

// Compile parses and loads a filter script, verifying that it defines a
// callable filter function. A failed Compile means the text must not be
// persisted, so a broken predicate can never surface mid-reconciliation.
func Compile(source string) (*Script, error) {
	chunk, err := parse.Parse(strings.NewReader(source), EntryPoint)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCompile, err)
	}
	proto, err := lua.Compile(chunk, EntryPoint)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCompile, err)
	}

	state := lua.NewState()
	state.SetGlobal("regex_match", state.NewFunction(regexMatch))

	state.Push(state.NewFunctionFromProto(proto))
	if err := state.PCall(0, lua.MultRet, nil); err != nil {
		state.Close()
		return nil, fmt.Errorf("%w: %v", ErrCompile, err)
	}

	fn := state.GetGlobal(EntryPoint)
	if fn.Type() != lua.LTFunction {
		state.Close()
		return nil, fmt.Errorf("%w: script does not define a callable %q function", ErrCompile, EntryPoint)
	}
	return &Script{state: state, fn: fn}, nil
}

// Validate reports whether the source text compiles into a usable predicate.
func Validate(source string) error {
	script, err := Compile(source)
	if err != nil {
		return err
	}
	script.Close()
	return nil
}

// Close releases the interpreter state.
func (s *Script) Close() {
	if s != nil && s.state != nil {
		s.state.Close()
		s.state = nil
	}
}

// Evaluate runs the predicate against one track and returns its
// exclude-from-sync decision.
func (s *Script) Evaluate(attrs TrackAttributes) (bool, error) {
	if s == nil || s.state == nil {
		return false, fmt.Errorf("%w: script is closed", ErrRuntime)
	}

	tbl := s.state.NewTable()
	s.state.SetField(tbl, "title", lua.LString(attrs.Title))
	s.state.SetField(tbl, "artist", lua.LString(attrs.Artist))
	s.state.SetField(tbl, "album", lua.LString(attrs.Album))
	s.state.SetField(tbl, "number", lua.LNumber(attrs.Number))
	s.state.SetField(tbl, "file_path", lua.LString(attrs.FilePath))
	s.state.SetField(tbl, "disc_number", lua.LNumber(attrs.DiscNumber))
	s.state.SetField(tbl, "disc_total", lua.LNumber(attrs.DiscTotal))
	s.state.SetField(tbl, "extension", lua.LString(attrs.Extension))

	if err := s.state.CallByParam(lua.P{Fn: s.fn, NRet: 1, Protect: true}, tbl); err != nil {
		return false, fmt.Errorf("%w: %v", ErrRuntime, err)
	}
	ret := s.state.Get(-1)
	s.state.Pop(1)

	decision, ok := ret.(lua.LBool)
	if !ok {
		return false, fmt.Errorf("%w: %s returned %s, want boolean", ErrRuntime, EntryPoint, ret.Type())
	}
	return bool(decision), nil
}

// regex_match(expr, s) exposes Go regular expressions to filter scripts.
func regexMatch(L *lua.LState) int {
	expr := L.CheckString(1)
	data := L.CheckString(2)
	matched, err := regexp.MatchString(expr, data)
	if err != nil {
		L.RaiseError("regex_match: %v", err)
		return 0
	}
	L.Push(lua.LBool(matched))
	return 1
}
