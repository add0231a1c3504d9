//go:build linux

package runloop

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// poller sleeps in epoll_wait on an eventfd (Linux).
type poller struct {
	events [1]unix.EpollEvent
	buf    [8]byte
	epfd   int
	wakeFd int
}

func newPoller() (*poller, error) {
	wakeFd, err := unix.Eventfd(0, unix.EFD_CLOEXEC|unix.EFD_NONBLOCK)
	if err != nil {
		return nil, err
	}

	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		_ = unix.Close(wakeFd)
		return nil, err
	}

	ev := unix.EpollEvent{
		Events: unix.EPOLLIN,
		Fd:     int32(wakeFd),
	}
	if err := unix.EpollCtl(epfd, unix.EPOLL_CTL_ADD, wakeFd, &ev); err != nil {
		_ = unix.Close(epfd)
		_ = unix.Close(wakeFd)
		return nil, err
	}

	return &poller{epfd: epfd, wakeFd: wakeFd}, nil
}

func (p *poller) signal() error {
	// native endianness, as required by eventfd
	var one uint64 = 1
	buf := (*[8]byte)(unsafe.Pointer(&one))[:]

	_, err := unix.Write(p.wakeFd, buf)
	if err == unix.EAGAIN {
		// counter saturated, which means it's already readable
		return nil
	}
	return err
}

func (p *poller) wait() error {
	for {
		n, err := unix.EpollWait(p.epfd, p.events[:], -1)
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
		if _, err := unix.Read(p.wakeFd, p.buf[:]); err != nil {
			return
		}
	}
}

func (p *poller) close() error {
	err := unix.Close(p.epfd)
	if err2 := unix.Close(p.wakeFd); err == nil {
		err = err2
	}
	return err
}
