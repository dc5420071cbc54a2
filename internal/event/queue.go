package event

import "sync"

// Queue is an ordered multi-producer, single-consumer queue of protocol
// events. Producers register themselves with AddProducer and sign off
// with RemoveProducer; Consume blocks until an item is available, and
// reports end-of-stream only once the last producer has signed off and
// every remaining item has been drained. This is the one structure
// shared between the ingress loops and the controller.
type Queue[T any] struct {
	mu        sync.Mutex
	cond      *sync.Cond
	items     []T
	producers int
}

func NewQueue[T any]() *Queue[T] {
	q := &Queue[T]{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

func (q *Queue[T]) AddProducer() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.producers++
}

// RemoveProducer signs one producer off. When the count reaches zero
// the queue is closed for production and blocked consumers wake up to
// drain what is left.
func (q *Queue[T]) RemoveProducer() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.producers > 0 {
		q.producers--
	}
	if q.producers == 0 {
		q.cond.Broadcast()
	}
}

// Produce appends an item. Items produced after the last producer has
// signed off are dropped.
func (q *Queue[T]) Produce(item T) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.producers == 0 {
		return
	}
	q.items = append(q.items, item)
	q.cond.Signal()
}

// Consume removes and returns the oldest item, blocking while the
// queue is empty and producers remain. The second return value is
// false only at end-of-stream.
func (q *Queue[T]) Consume() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.items) == 0 && q.producers > 0 {
		q.cond.Wait()
	}
	if len(q.items) == 0 {
		var zero T
		return zero, false
	}
	item := q.items[0]
	q.items = q.items[1:]
	return item, true
}

// Len reports the number of queued items.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
