package sgruntime

import (
	"github.com/gosuda/stargate/ast"
)

// classDef is a class declaration plus the scope it was declared in.
// Field defaults and methods close over that scope.
type classDef struct {
	decl ast.ClassDecl
	env  *Env
}

func (it *Interpreter) defineClass(decl ast.ClassDecl, env *Env) {
	it.classes[decl.Name] = &classDef{decl: decl, env: env}
}

// lineage returns name's class chain, the class itself first. Parents
// are resolved lazily so a class may extend one declared after it.
func (it *Interpreter) lineage(name string) ([]*classDef, error) {
	var chain []*classDef
	visited := map[string]struct{}{}
	cur := name
	for cur != "" {
		if _, ok := visited[cur]; ok {
			return nil, typeErrorf("cyclic inheritance involving class %s", cur)
		}
		if len(visited) > len(it.classes) {
			return nil, typeErrorf("cyclic inheritance involving class %s", name)
		}
		visited[cur] = struct{}{}
		def, ok := it.classes[cur]
		if !ok {
			if cur == name {
				return nil, newError(NameError, "undefined class %q", name)
			}
			return nil, newError(NameError, "class %s extends undefined class %q", chain[len(chain)-1].decl.Name, cur)
		}
		chain = append(chain, def)
		cur = def.decl.Parent
	}
	return chain, nil
}

func (it *Interpreter) instantiate(name string) (*Instance, error) {
	chain, err := it.lineage(name)
	if err != nil {
		return nil, err
	}
	in := &Instance{Class: name, Fields: NewDict()}
	for i := len(chain) - 1; i >= 0; i-- {
		def := chain[i]
		for _, f := range def.decl.Fields {
			v := None
			if f.Default != nil {
				v, err = it.evalExpr(f.Default, NewEnv(def.env))
				if err != nil {
					return nil, err
				}
			}
			in.Fields.PutStr(f.Name, v)
		}
	}
	return in, nil
}

type boundMethod struct {
	decl ast.MethodDecl
	env  *Env
}

func (it *Interpreter) findMethod(class, name string) (boundMethod, bool) {
	chain, err := it.lineage(class)
	if err != nil {
		return boundMethod{}, false
	}
	for _, def := range chain {
		for _, m := range def.decl.Methods {
			if m.Name == name {
				return boundMethod{decl: m, env: def.env}, true
			}
		}
	}
	return boundMethod{}, false
}

func (it *Interpreter) bindMethod(in *Instance, m boundMethod) *Closure {
	return &Closure{
		Name:   in.Class + "." + m.decl.Name,
		Params: m.decl.Params,
		Block:  m.decl.Body,
		Env:    m.env,
		Self:   in,
	}
}
