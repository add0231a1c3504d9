//go:build darwin

package runloop

import (
	"golang.org/x/sys/unix"
)

// poller sleeps in kevent on the read end of a self-pipe (Darwin).
type poller struct {
	events  [1]unix.Kevent_t
	buf     [64]byte
	kq      int
	readFd  int
	writeFd int
}

func newPoller() (*poller, error) {
	var fds [2]int
	if err := unix.Pipe(fds[:]); err != nil {
		return nil, err
	}

	cleanup := func() {
		_ = unix.Close(fds[0])
		_ = unix.Close(fds[1])
	}

	unix.CloseOnExec(fds[0])
	unix.CloseOnExec(fds[1])

	if err := unix.SetNonblock(fds[0], true); err != nil {
		cleanup()
		return nil, err
	}
	if err := unix.SetNonblock(fds[1], true); err != nil {
		cleanup()
		return nil, err
	}

	kq, err := unix.Kqueue()
	if err != nil {
		cleanup()
		return nil, err
	}
	unix.CloseOnExec(kq)

	var ev unix.Kevent_t
	unix.SetKevent(&ev, fds[0], unix.EVFILT_READ, unix.EV_ADD|unix.EV_ENABLE)
	if _, err := unix.Kevent(kq, []unix.Kevent_t{ev}, nil, nil); err != nil {
		_ = unix.Close(kq)
		cleanup()
		return nil, err
	}

	return &poller{kq: kq, readFd: fds[0], writeFd: fds[1]}, nil
}

func (p *poller) signal() error {
	_, err := unix.Write(p.writeFd, []byte{1})
	if err == unix.EAGAIN {
		// pipe full, which means it's already readable
		return nil
	}
	return err
}

func (p *poller) wait() error {
	for {
		n, err := unix.Kevent(p.kq, nil, p.events[:], nil)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return err
		}
		if n > 0 {
			break
		}
	}
	p.drain()
	return nil
}

func (p *poller) drain() {
	for {
		if _, err := unix.Read(p.readFd, p.buf[:]); err != nil {
			return
		}
	}
}

func (p *poller) close() error {
	err := unix.Close(p.kq)
	if err2 := unix.Close(p.readFd); err == nil {
		err = err2
	}
	if err2 := unix.Close(p.writeFd); err == nil {
		err = err2
	}
	return err
}
