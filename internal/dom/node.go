// Package dom models the slice of a live document tree the extension cares
// about: element nodes with attributes and classes, subtree insertion, and a
// watcher that reports added subtrees so injection can rescan exactly the new
// elements.
package dom

import "strings"

// Node is one element in the tree. Zero-value maps are allocated lazily.
type Node struct {
	Tag  string
	Text string

	// OnClick is the handler wired by the injector onto toggle affordances.
	OnClick func()

	attrs    map[string]string
	classes  map[string]struct{}
	parent   *Node
	children []*Node
}

func NewNode(tag string) *Node {
	return &Node{Tag: tag}
}

// Attr returns the named attribute value, empty when unset.
func (n *Node) Attr(name string) string {
	return n.attrs[name]
}

func (n *Node) SetAttr(name, value string) *Node {
	if n.attrs == nil {
		n.attrs = make(map[string]string)
	}
	n.attrs[name] = value
	return n
}

func (n *Node) HasClass(class string) bool {
	_, ok := n.classes[class]
	return ok
}

func (n *Node) AddClass(class string) *Node {
	if n.classes == nil {
		n.classes = make(map[string]struct{})
	}
	n.classes[class] = struct{}{}
	return n
}

func (n *Node) RemoveClass(class string) {
	delete(n.classes, class)
}

// ClassList returns the classes joined for debugging output.
func (n *Node) ClassList() string {
	classes := make([]string, 0, len(n.classes))
	for c := range n.classes {
		classes = append(classes, c)
	}
	return strings.Join(classes, " ")
}

func (n *Node) Parent() *Node { return n.parent }

func (n *Node) Children() []*Node { return n.children }

// AppendChild attaches child to n without firing observers. Document.Append
// is the observed entry point.
func (n *Node) AppendChild(child *Node) *Node {
	child.detach()
	child.parent = n
	n.children = append(n.children, child)
	return n
}

// InsertBefore places child immediately before ref among n's children. When
// ref is not a child of n, child is appended instead.
func (n *Node) InsertBefore(child, ref *Node) {
	child.detach()
	child.parent = n
	for i, c := range n.children {
		if c == ref {
			n.children = append(n.children[:i], append([]*Node{child}, n.children[i:]...)...)
			return
		}
	}
	n.children = append(n.children, child)
}

// Remove detaches n from its parent.
func (n *Node) Remove() {
	n.detach()
}

func (n *Node) detach() {
	if n.parent == nil {
		return
	}
	siblings := n.parent.children
	for i, c := range siblings {
		if c == n {
			n.parent.children = append(siblings[:i], siblings[i+1:]...)
			break
		}
	}
	n.parent = nil
}

// Closest walks from n up through its ancestors and returns the first node
// matching pred, or nil.
func (n *Node) Closest(pred func(*Node) bool) *Node {
	for cur := n; cur != nil; cur = cur.parent {
		if pred(cur) {
			return cur
		}
	}
	return nil
}

// Find returns the first node in n's subtree (including n) matching pred.
func (n *Node) Find(pred func(*Node) bool) *Node {
	if pred(n) {
		return n
	}
	for _, child := range n.children {
		if found := child.Find(pred); found != nil {
			return found
		}
	}
	return nil
}

// FindAll returns every node in n's subtree (including n) matching pred, in
// document order.
func (n *Node) FindAll(pred func(*Node) bool) []*Node {
	var out []*Node
	n.Walk(func(node *Node) {
		if pred(node) {
			out = append(out, node)
		}
	})
	return out
}

// Walk visits n and every descendant depth-first.
func (n *Node) Walk(visit func(*Node)) {
	visit(n)
	for _, child := range n.children {
		child.Walk(visit)
	}
}
