package stats

import "errors"

// ErrVersionMismatch is returned when the mapped region's header version
// does not equal the one version this reader understands.
var ErrVersionMismatch = errors.New("stats: version mismatch")

// ErrNoFileDescriptor is returned when the stats socket's SCM_RIGHTS
// ancillary message did not carry a file descriptor.
var ErrNoFileDescriptor = errors.New("stats: no file descriptor received over SCM_RIGHTS")

// ErrRegionTooSmall is an Internal-class invariant violation: the mapped
// region is smaller than the fixed header it is required to start with.
var ErrRegionTooSmall = errors.New("stats: mapped region smaller than header")

// ErrDirectoryEntryNotFound is returned when a required well-known
// directory entry ("/if/names", "/if/rx", "/if/tx") is absent from the
// scanned directory.
var ErrDirectoryEntryNotFound = errors.New("stats: directory entry not found")
