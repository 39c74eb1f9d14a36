package coherence

// Waiter is a suspended access waiting to resume once a block lock is
// released (original_source dir_lock_t's lock_queue of (event, stack)
// pairs). Resume is called in FIFO order.
type Waiter func()

// lock is a per-block lock with a FIFO queue of waiters, grounded on
// original_source/src/libmemsystem/directory.c's dir_lock_get/dir_lock_
// lock/dir_lock_unlock.
type lock struct {
	held  bool
	queue []Waiter
}

// Lock acquires the block lock at idx if free, returning true; if held, it
// enqueues waiter (if non-nil) to resume once Unlock drains the queue.
func (d *Directory) Lock(idx int, waiter Waiter) (acquired bool) {
	l := &d.locks[idx]
	if l.held {
		if waiter != nil {
			l.queue = append(l.queue, waiter)
		}
		return false
	}
	l.held = true
	return true
}

// Unlock releases the block lock at idx and resumes every queued waiter in
// FIFO order (original_source "Wake up all waiters").
func (d *Directory) Unlock(idx int) {
	l := &d.locks[idx]
	l.held = false
	waiters := l.queue
	l.queue = nil
	for _, w := range waiters {
		w()
	}
}

// Locked reports whether the block at idx is currently locked.
func (d *Directory) Locked(idx int) bool {
	return d.locks[idx].held
}
