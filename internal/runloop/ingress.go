package runloop

// chunkSize is the number of tasks held by each queue segment.
const chunkSize = 128

// chunkedQueue is an unbounded FIFO of tasks, stored as a linked list of
// fixed-size segments, so steady-state use doesn't reallocate. One drained
// segment is kept back for reuse.
//
// Not safe for concurrent use, the Loop's mutex guards it.
type chunkedQueue struct { // betteralign:ignore
	head  *segment
	tail  *segment
	spare *segment
	n     int
}

// segment holds the tasks in buf[read:write].
type segment struct {
	buf   [chunkSize]Task
	next  *segment
	read  int
	write int
}

// Push appends a task to the tail.
func (q *chunkedQueue) Push(task Task) {
	if q.tail == nil || q.tail.write == chunkSize {
		s := q.takeSegment()
		if q.tail == nil {
			q.head = s
		} else {
			q.tail.next = s
		}
		q.tail = s
	}
	q.tail.buf[q.tail.write] = task
	q.tail.write++
	q.n++
}

// Pop removes the task at the head, reporting false if there was none.
func (q *chunkedQueue) Pop() (Task, bool) {
	s := q.head
	if s == nil || s.read == s.write {
		return Task{}, false
	}

	task := s.buf[s.read]
	s.buf[s.read] = Task{} // release the closures
	s.read++
	q.n--

	if s.read == s.write {
		if s.next == nil {
			// rewind in place, rather than dropping the only segment
			s.read, s.write = 0, 0
		} else {
			q.head = s.next
			q.putSegment(s)
		}
	}

	return task, true
}

// Length returns the number of queued tasks.
func (q *chunkedQueue) Length() int {
	return q.n
}

func (q *chunkedQueue) takeSegment() *segment {
	if s := q.spare; s != nil {
		q.spare = nil
		return s
	}
	return new(segment)
}

// putSegment retains a drained segment, which must already be cleared.
func (q *chunkedQueue) putSegment(s *segment) {
	s.next = nil
	s.read, s.write = 0, 0
	if q.spare == nil {
		q.spare = s
	}
}
