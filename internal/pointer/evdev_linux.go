//go:build linux

package pointer

import (
	"context"
	"encoding/binary"
	"log"
	"path/filepath"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Linux input event constants (linux/input-event-codes.h).
const (
	evRel = 0x02
	relX  = 0x00
	relY  = 0x01
)

// ioctl request encoding (Linux _IOC macro).
const (
	iocNRShift   = 0
	iocTypeShift = 8
	iocSizeShift = 16
	iocDirShift  = 30
	iocRead      = 2
)

func ioc(dir, typ, nr, size uintptr) uintptr {
	return dir<<iocDirShift | size<<iocSizeShift | typ<<iocTypeShift | nr<<iocNRShift
}

// EVIOCGBIT(ev, len) reads the capability bitmask for event type ev.
func eviocgbit(ev, size uintptr) uintptr {
	return ioc(iocRead, 'E', 0x20+ev, size)
}

// EVIOCGNAME(len) reads the device name.
func eviocgname(size uintptr) uintptr {
	return ioc(iocRead, 'E', 0x06, size)
}

// eventSize is the on-disk size of struct input_event on 64-bit Linux:
// 16-byte timeval followed by type, code and value.
const eventSize = 24

// Collector reads relative motion from every /dev/input event device that
// advertises REL_X/REL_Y, merging all devices into one drain queue. Devices
// are enumerated once at startup; hotplugged mice are picked up on the next
// process start.
type Collector struct {
	q *queue
}

// NewCollector returns an empty collector. Start must be called before Drain
// yields anything.
func NewCollector() *Collector {
	return &Collector{q: newQueue()}
}

// Start scans /dev/input and spawns a reader goroutine per relative-motion
// device. Finding no device is not an error: the collector simply drains
// nothing, and the synthesis loop treats that as zero motion.
func (c *Collector) Start(ctx context.Context) error {
	paths, err := filepath.Glob("/dev/input/event*")
	if err != nil {
		return err
	}

	opened := 0
	for _, path := range paths {
		fd, err := unix.Open(path, unix.O_RDONLY|unix.O_NONBLOCK, 0)
		if err != nil {
			continue
		}
		if !hasRelMotion(fd) {
			unix.Close(fd)
			continue
		}
		log.Printf("pointer device: %s (%s)", deviceName(fd), path)
		opened++
		go c.readDevice(ctx, fd, path)
	}
	if opened == 0 {
		log.Println("no relative pointer devices found; motion input will be zero")
	}
	return nil
}

// Drain returns all motion accumulated since the previous call.
func (c *Collector) Drain() []Motion {
	return c.q.drain()
}

func (c *Collector) readDevice(ctx context.Context, fd int, path string) {
	defer unix.Close(fd)
	buf := make([]byte, eventSize*64)

	for ctx.Err() == nil {
		fds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
		n, err := unix.Poll(fds, 250)
		if err != nil && err != unix.EINTR {
			log.Printf("pointer poll failed on %s: %v", path, err)
			return
		}
		if n == 0 || fds[0].Revents&unix.POLLIN == 0 {
			continue
		}

		read, err := unix.Read(fd, buf)
		if err != nil {
			if err == unix.EAGAIN || err == unix.EINTR {
				continue
			}
			log.Printf("pointer device %s gone: %v", path, err)
			return
		}
		c.decode(buf[:read])
	}
}

// decode walks a batch of raw input_event records and queues the relative
// X/Y movements.
func (c *Collector) decode(raw []byte) {
	for off := 0; off+eventSize <= len(raw); off += eventSize {
		typ := binary.LittleEndian.Uint16(raw[off+16 : off+18])
		if typ != evRel {
			continue
		}
		code := binary.LittleEndian.Uint16(raw[off+18 : off+20])
		value := int32(binary.LittleEndian.Uint32(raw[off+20 : off+24]))
		switch code {
		case relX:
			c.q.push(Motion{DX: float64(value)})
		case relY:
			c.q.push(Motion{DY: float64(value)})
		}
	}
}

// hasRelMotion reports whether the device advertises EV_REL with both REL_X
// and REL_Y, which filters keyboards and absolute-only devices out.
func hasRelMotion(fd int) bool {
	var evBits [8]byte
	if !ioctlBits(fd, eviocgbit(0, uintptr(len(evBits))), evBits[:]) {
		return false
	}
	if evBits[evRel/8]&(1<<(evRel%8)) == 0 {
		return false
	}

	var relBits [8]byte
	if !ioctlBits(fd, eviocgbit(evRel, uintptr(len(relBits))), relBits[:]) {
		return false
	}
	return relBits[relX/8]&(1<<(relX%8)) != 0 && relBits[relY/8]&(1<<(relY%8)) != 0
}

func deviceName(fd int) string {
	var name [256]byte
	if !ioctlBits(fd, eviocgname(uintptr(len(name))), name[:]) {
		return "unknown"
	}
	for i, b := range name {
		if b == 0 {
			return string(name[:i])
		}
	}
	return string(name[:])
}

func ioctlBits(fd int, req uintptr, out []byte) bool {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), req, uintptr(unsafe.Pointer(&out[0])))
	return errno == 0
}
