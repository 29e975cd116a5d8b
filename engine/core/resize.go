package core

// ResizeNotifier fans framebuffer size changes out to subscribers in
// subscription order.
type ResizeNotifier struct {
	next int
	subs []resizeSub
}

type resizeSub struct {
	id int
	fn func(w, h int)
}

// Subscribe registers fn and returns a function that removes it.
func (n *ResizeNotifier) Subscribe(fn func(w, h int)) (cancel func()) {
	id := n.next
	n.next++
	n.subs = append(n.subs, resizeSub{id: id, fn: fn})
	return func() {
		for i, s := range n.subs {
			if s.id == id {
				n.subs = append(n.subs[:i:i], n.subs[i+1:]...)
				return
			}
		}
	}
}

func (n *ResizeNotifier) Notify(w, h int) {
	// Subscribers may cancel while being notified.
	subs := append([]resizeSub(nil), n.subs...)
	for _, s := range subs {
		s.fn(w, h)
	}
}

func (n *ResizeNotifier) Len() int { return len(n.subs) }
