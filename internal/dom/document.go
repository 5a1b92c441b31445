package dom

import "sync"

// Document owns a tree root and the added-subtree notification channel. Only
// Append fires observers — attribute and text mutations are deliberately not
// observed, matching a childList+subtree watcher.
type Document struct {
	Body *Node

	mu        sync.Mutex
	observers map[int]func(added *Node)
	nextID    int
}

func NewDocument() *Document {
	return &Document{
		Body:      NewNode("body"),
		observers: make(map[int]func(added *Node)),
	}
}

// Append attaches child under parent and notifies every observer with the
// root of the added subtree. Callers building a batch append each subtree
// root once; descendants ride along.
func (d *Document) Append(parent, child *Node) {
	parent.AppendChild(child)

	d.mu.Lock()
	observers := make([]func(*Node), 0, len(d.observers))
	for _, fn := range d.observers {
		observers = append(observers, fn)
	}
	d.mu.Unlock()

	for _, fn := range observers {
		fn(child)
	}
}

// Observe subscribes to added-subtree notifications. The returned function
// disconnects the observer.
func (d *Document) Observe(fn func(added *Node)) func() {
	d.mu.Lock()
	id := d.nextID
	d.nextID++
	d.observers[id] = fn
	d.mu.Unlock()

	return func() {
		d.mu.Lock()
		delete(d.observers, id)
		d.mu.Unlock()
	}
}
