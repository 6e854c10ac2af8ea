package store

import "sync"

// Value is an observable cell. Subscribers are notified synchronously after
// every Set or Update, in registration order. Notifications for successive
// changes never overlap or reorder. A subscriber may call Get but must not
// Set or Update the cell it is subscribed to.
type Value[T any] struct {
	writeMu sync.Mutex // serializes change + notification
	mu      sync.Mutex // guards v and subs
	v       T
	subs    []subscriber[T]
	nextID  int
}

type subscriber[T any] struct {
	id int
	fn func(T)
}

// NewValue returns a cell holding v.
func NewValue[T any](v T) *Value[T] {
	return &Value[T]{v: v}
}

// Get returns the current value.
func (c *Value[T]) Get() T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.v
}

// Set replaces the value and notifies subscribers.
func (c *Value[T]) Set(v T) {
	c.Update(func(T) T { return v })
}

// Update replaces the value with fn(current) and notifies subscribers.
// fn runs under the cell's lock, so concurrent updates never interleave.
func (c *Value[T]) Update(fn func(T) T) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.mu.Lock()
	c.v = fn(c.v)
	v := c.v
	subs := append([]subscriber[T](nil), c.subs...)
	c.mu.Unlock()

	for _, s := range subs {
		s.fn(v)
	}
}

// Subscribe registers fn for future changes. The current value is not
// replayed. The returned function removes the subscription.
func (c *Value[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextID
	c.nextID++
	c.subs = append(c.subs, subscriber[T]{id: id, fn: fn})

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		for i, s := range c.subs {
			if s.id == id {
				c.subs = append(c.subs[:i:i], c.subs[i+1:]...)
				return
			}
		}
	}
}
