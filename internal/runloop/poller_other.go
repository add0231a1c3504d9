//go:build !linux && !darwin

package runloop

// poller is the portable fallback, a single-slot channel.
type poller struct {
	ch chan struct{}
}

func newPoller() (*poller, error) {
	return &poller{ch: make(chan struct{}, 1)}, nil
}

func (p *poller) signal() error {
	select {
	case p.ch <- struct{}{}:
	default:
	}
	return nil
}

func (p *poller) wait() error {
	<-p.ch
	return nil
}

func (p *poller) close() error {
	return nil
}
