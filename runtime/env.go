package sgruntime

import "sort"

// Env is one scope in the lexical chain. Closures keep a pointer to the
// scope they were created in.
type Env struct {
	vars   map[string]Value
	parent *Env
	// self makes the receiver's fields visible as bare names inside a
	// method body.
	self *Instance
}

func NewEnv(parent *Env) *Env {
	return &Env{vars: map[string]Value{}, parent: parent}
}

func newMethodEnv(parent *Env, self *Instance) *Env {
	e := NewEnv(parent)
	e.self = self
	return e
}

// Define binds name in this scope, shadowing any outer binding.
func (e *Env) Define(name string, v Value) {
	e.vars[name] = v
}

func (e *Env) Get(name string) (Value, bool) {
	for cur := e; cur != nil; cur = cur.parent {
		if v, ok := cur.vars[name]; ok {
			return v, true
		}
		if cur.self != nil && cur.self.Fields != nil {
			if v, ok := cur.self.Fields.GetStr(name); ok {
				return v, true
			}
		}
	}
	return None, false
}

// Assign updates the nearest existing binding of name. It reports false
// when no scope defines it.
func (e *Env) Assign(name string, v Value) bool {
	for cur := e; cur != nil; cur = cur.parent {
		if _, ok := cur.vars[name]; ok {
			cur.vars[name] = v
			return true
		}
		if cur.self != nil && cur.self.Fields != nil {
			if _, ok := cur.self.Fields.GetStr(name); ok {
				cur.self.Fields.PutStr(name, v)
				return true
			}
		}
	}
	return false
}

func (e *Env) Root() *Env {
	cur := e
	for cur.parent != nil {
		cur = cur.parent
	}
	return cur
}

// Names lists every visible name, innermost first, without duplicates.
func (e *Env) Names() []string {
	seen := map[string]struct{}{}
	var out []string
	for cur := e; cur != nil; cur = cur.parent {
		local := make([]string, 0, len(cur.vars))
		for name := range cur.vars {
			if _, ok := seen[name]; !ok {
				seen[name] = struct{}{}
				local = append(local, name)
			}
		}
		sort.Strings(local)
		out = append(out, local...)
	}
	return out
}
