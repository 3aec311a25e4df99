package session

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

// sessionSeq gives each Session in this process a distinct ordinal.
var sessionSeq int64

var (
	prefixOnce sync.Once
	prefix     string
)

// processPrefix returns a string that is constant for the life of this
// process: hostname + start time. A session id only needs to be unique
// across the lifetime of this client process, not the host.
func processPrefix() string {
	prefixOnce.Do(func() {
		host, err := os.Hostname()
		if err != nil {
			host = "unknown-host"
		}
		prefix = fmt.Sprintf("%s_%d", host, time.Now().Unix())
	})
	return prefix
}

// newSessionID returns a process-unique, human-readable identifier for log
// correlation across a session's lifetime; purely a logging aid, never
// part of the wire protocol.
func newSessionID() string {
	n := atomic.AddInt64(&sessionSeq, 1)
	return fmt.Sprintf("%s_%d", processPrefix(), n)
}
