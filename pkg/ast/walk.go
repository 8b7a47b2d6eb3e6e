package ast

// Children returns the direct children of a node, in source order.
func Children(n Node) []Node {
	var ch []Node
	add := func(ns ...Node) {
		for _, n := range ns {
			if n != nil {
				ch = append(ch, n)
			}
		}
	}
	switch n := n.(type) {
	case *Unary:
		add(n.X)
	case *Binary:
		add(n.X, n.Y)
	case *Assign:
		add(n.Target, n.Value)
	case *Conditional:
		add(n.Test, n.Then, n.Else)
	case *Lambda:
		add(n.Body)
	case *Invoke:
		add(n.Fn)
		add(n.Args...)
	case *Call:
		add(n.Recv)
		add(n.Args...)
	case *Member:
		add(n.Recv)
	case *Index:
		add(n.X, n.Index)
	case *New:
		add(n.Args...)
	case *NewArray:
		add(n.Elems...)
		add(n.Len)
	case *Block:
		add(n.Body...)
	case *Declare:
		add(n.Init)
	case *Return:
		add(n.Value)
	case *Throw:
		add(n.Value)
	case *Loop:
		add(n.Test, n.Body, n.Step)
	case *Switch:
		add(n.Value)
		for _, c := range n.Cases {
			add(c.Values...)
			add(c.Body...)
		}
		add(n.Default...)
	case *Try:
		add(n.Body)
		for _, c := range n.Catches {
			add(c.Body)
		}
		if n.Finally != nil {
			add(n.Finally)
		}
	case *DebugPoint:
		add(n.Cond)
	}
	return ch
}

// Walk calls f for n and, if f returns true, walks the children of n
// depth-first.
func Walk(n Node, f func(Node) bool) {
	if n == nil || !f(n) {
		return
	}
	for _, ch := range Children(n) {
		Walk(ch, f)
	}
}
