package stats

import (
	"fmt"
	"net"
	"os"
	"time"

	"golang.org/x/sys/unix"
)

// Client owns the mmap'd stats region and the file descriptor it was
// handed over the stats socket. Unlike session.Session, there is no
// background goroutine: every method is a synchronous read over the
// read-only mapping, safe to call from multiple goroutines at once.
type Client struct {
	*Region

	conn *net.UnixConn
	file *os.File
	data []byte
}

// Connect dials path over a UNIX seqpacket socket, receives exactly one
// file descriptor over its SCM_RIGHTS ancillary message, maps it read-only
// and shared, and parses the versioned header.
func Connect(path string) (*Client, error) {
	start := time.Now()
	defer func() { ScrapeLatencyHistogram.Observe(time.Since(start).Seconds()) }()

	addr := &net.UnixAddr{Name: path, Net: "unixpacket"}
	conn, err := net.DialUnix("unixpacket", nil, addr)
	if err != nil {
		return nil, fmt.Errorf("stats: dial %s: %w", path, err)
	}

	fd, err := recvFD(conn)
	if err != nil {
		conn.Close()
		return nil, err
	}

	f := os.NewFile(uintptr(fd), "vpp-stats-segment")
	info, err := f.Stat()
	if err != nil {
		f.Close()
		conn.Close()
		return nil, fmt.Errorf("stats: fstat segment fd: %w", err)
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(info.Size()), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		conn.Close()
		return nil, fmt.Errorf("stats: mmap segment: %w", err)
	}

	region, err := NewRegion(data)
	if err != nil {
		unix.Munmap(data)
		f.Close()
		conn.Close()
		return nil, err
	}

	return &Client{Region: region, conn: conn, file: f, data: data}, nil
}

// recvFD issues a single Recvmsg expecting an SCM_RIGHTS ancillary message
// carrying exactly one file descriptor, the same ParseSocketControlMessage
// + ParseUnixRights shape used for UFFD fd handoff over a unix socket.
func recvFD(conn *net.UnixConn) (int, error) {
	rawConn, err := conn.SyscallConn()
	if err != nil {
		return -1, fmt.Errorf("stats: raw conn: %w", err)
	}

	buf := make([]byte, 1) // the server's message body is a single byte; the fd rides in oob.
	oob := make([]byte, unix.CmsgSpace(4))
	var oobn int
	var recvErr error
	controlErr := rawConn.Read(func(fd uintptr) bool {
		_, oobn, _, _, recvErr = unix.Recvmsg(int(fd), buf, oob, 0)
		return true
	})
	if controlErr != nil {
		return -1, fmt.Errorf("stats: raw conn read: %w", controlErr)
	}
	if recvErr != nil {
		return -1, fmt.Errorf("stats: recvmsg: %w", recvErr)
	}
	if oobn == 0 {
		return -1, ErrNoFileDescriptor
	}

	scms, err := unix.ParseSocketControlMessage(oob[:oobn])
	if err != nil {
		return -1, fmt.Errorf("stats: parse control message: %w", err)
	}
	for _, scm := range scms {
		fds, err := unix.ParseUnixRights(&scm)
		if err == nil && len(fds) > 0 {
			return fds[0], nil
		}
	}
	return -1, ErrNoFileDescriptor
}

// Close unmaps the stats segment and closes the fd and socket.
func (c *Client) Close() error {
	if err := unix.Munmap(c.data); err != nil {
		c.file.Close()
		c.conn.Close()
		return err
	}
	if err := c.file.Close(); err != nil {
		c.conn.Close()
		return err
	}
	return c.conn.Close()
}
