package eval

import (
	"strings"

	"github.com/cellengine/cellengine/internal/arena"
)

// Builtin implements one named function (spec §4.6). It receives the
// unevaluated argument expressions, not their values, so that
// short-circuiting functions such as if() and try() control which
// arguments are evaluated at all, and functions such as cell(), col(), and
// row() can inspect an argument's shape before deciding whether to
// evaluate it.
type Builtin func(f *Frame, args []*arena.Node) *arena.Node

var registry = map[string]Builtin{}

// Register adds fn under name (matched case-insensitively at call time) to
// the builtin dispatch table. internal/builtins calls this from its
// package-level init() functions, the way database/sql drivers register
// themselves, so that eval never imports builtins and no cycle is formed.
func Register(name string, fn Builtin) {
	registry[strings.ToLower(name)] = fn
}

func lookupBuiltin(name string) (Builtin, bool) {
	fn, ok := registry[name]
	return fn, ok
}
