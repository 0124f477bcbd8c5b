package control

// outboxSize bounds publishes waiting for a slow broker. At one telemetry
// message per 2s tick this is about a minute of backlog.
const outboxSize = 32

// outbox runs MQTT publishes on a single goroutine so that a broker waiting
// on acknowledgements never holds up a tick. Jobs run in the order queued.
// All methods must be called from the goroutine driving the loop.
type outbox struct {
	jobs   chan func()
	done   chan struct{}
	closed bool
}

func newOutbox(size int) *outbox {
	o := &outbox{
		jobs: make(chan func(), size),
		done: make(chan struct{}),
	}
	go o.run()
	return o
}

func (o *outbox) run() {
	defer close(o.done)
	for job := range o.jobs {
		job()
	}
}

// enqueue never blocks. It reports false when the queue is full or closed.
func (o *outbox) enqueue(job func()) bool {
	if o.closed {
		return false
	}
	select {
	case o.jobs <- job:
		return true
	default:
		return false
	}
}

// flush waits until every job queued so far has run.
func (o *outbox) flush() {
	if o.closed {
		return
	}
	ran := make(chan struct{})
	o.jobs <- func() { close(ran) }
	<-ran
}

// close runs the remaining jobs and stops the goroutine.
func (o *outbox) close() {
	if o.closed {
		return
	}
	o.closed = true
	close(o.jobs)
	<-o.done
}
