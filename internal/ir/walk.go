package ir

import "fmt"

// Walk visits e and its children in pre-order. Returning false from visit
// skips the children of that node. Trigger terms are not visited.
func Walk(e *Expr, visit func(*Expr) bool) {
	if e == nil {
		return
	}
	if !visit(e) {
		return
	}
	for _, a := range e.Args {
		Walk(a, visit)
	}
}

// Rewrite rebuilds e bottom-up, replacing every node with fn(node). fn sees
// a fresh copy whose children are already rewritten, so it may modify it.
func Rewrite(e *Expr, fn func(*Expr) *Expr) *Expr {
	if e == nil {
		return nil
	}
	c := *e
	if e.Args != nil {
		c.Args = make([]*Expr, len(e.Args))
		for i, a := range e.Args {
			c.Args[i] = Rewrite(a, fn)
		}
	}
	if e.Triggers != nil {
		c.Triggers = make([][]*Expr, len(e.Triggers))
		for i, trig := range e.Triggers {
			c.Triggers[i] = make([]*Expr, len(trig))
			for j, term := range trig {
				c.Triggers[i][j] = Rewrite(term, fn)
			}
		}
	}
	return fn(&c)
}

// Calls returns the callees of every call node in e, in visit order.
func Calls(e *Expr) []Path {
	var out []Path
	Walk(e, func(n *Expr) bool {
		if n.Kind == ExprCall && n.Fun != nil {
			out = append(out, *n.Fun)
		}
		return true
	})
	return out
}

// Mentions reports whether any variable in names occurs free in e.
func Mentions(e *Expr, names map[string]bool) bool {
	found := false
	var walk func(*Expr, map[string]bool)
	walk = func(n *Expr, shadow map[string]bool) {
		if n == nil || found {
			return
		}
		switch n.Kind {
		case ExprVar:
			if names[n.Name] && !shadow[n.Name] {
				found = true
			}
			return
		case ExprLet:
			walk(n.Args[0], shadow)
			walk(n.Args[1], with(shadow, n.Name))
			return
		case ExprQuant:
			inner := shadow
			for _, b := range n.Binders {
				inner = with(inner, b.Name)
			}
			walk(n.Args[0], inner)
			return
		}
		for _, a := range n.Args {
			walk(a, shadow)
		}
	}
	walk(e, map[string]bool{})
	return found
}

func with(m map[string]bool, name string) map[string]bool {
	out := make(map[string]bool, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	out[name] = true
	return out
}

// Subst replaces free variables of e according to sub. Binders shadow, and
// a binder that would capture a free variable of a replacement is renamed.
func Subst(e *Expr, sub map[string]*Expr) *Expr {
	if e == nil || len(sub) == 0 {
		return e
	}
	switch e.Kind {
	case ExprVar:
		if r, ok := sub[e.Name]; ok {
			return r
		}
		return e
	case ExprLet:
		c := *e
		inner := without(sub, e.Name)
		if captures(inner, e.Name) {
			fresh := freshName(e.Name, inner)
			c.Name = fresh
			inner = bindSub(inner, e.Name, Var(fresh))
		}
		c.Args = []*Expr{Subst(e.Args[0], sub), Subst(e.Args[1], inner)}
		return &c
	case ExprQuant:
		c := *e
		inner := sub
		for _, b := range e.Binders {
			inner = without(inner, b.Name)
		}
		c.Binders = append([]Binder(nil), e.Binders...)
		for i, b := range e.Binders {
			if captures(inner, b.Name) {
				fresh := freshName(b.Name, inner)
				c.Binders[i].Name = fresh
				inner = bindSub(inner, b.Name, Var(fresh))
			}
		}
		c.Args = []*Expr{Subst(e.Args[0], inner)}
		if e.Triggers != nil {
			c.Triggers = make([][]*Expr, len(e.Triggers))
			for i, trig := range e.Triggers {
				c.Triggers[i] = make([]*Expr, len(trig))
				for j, term := range trig {
					c.Triggers[i][j] = Subst(term, inner)
				}
			}
		}
		return &c
	}
	if len(e.Args) == 0 {
		return e
	}
	c := *e
	c.Args = make([]*Expr, len(e.Args))
	for i, a := range e.Args {
		c.Args[i] = Subst(a, sub)
	}
	return &c
}

func without(sub map[string]*Expr, name string) map[string]*Expr {
	if _, ok := sub[name]; !ok {
		return sub
	}
	out := make(map[string]*Expr, len(sub))
	for k, v := range sub {
		if k != name {
			out[k] = v
		}
	}
	return out
}

func bindSub(sub map[string]*Expr, name string, e *Expr) map[string]*Expr {
	out := make(map[string]*Expr, len(sub)+1)
	for k, v := range sub {
		out[k] = v
	}
	out[name] = e
	return out
}

func captures(sub map[string]*Expr, name string) bool {
	names := map[string]bool{name: true}
	for _, r := range sub {
		if Mentions(r, names) {
			return true
		}
	}
	return false
}

func freshName(base string, sub map[string]*Expr) string {
	for i := 1; ; i++ {
		cand := fmt.Sprintf("%s$%d", base, i)
		if _, taken := sub[cand]; !taken && !captures(sub, cand) {
			return cand
		}
	}
}
