package stats

import (
	"time"

	"github.com/m-lab/go/logx"
)

var epochRetryLog = logx.NewLogEvery(nil, time.Second)

// maxEpochRetries bounds the consistent-snapshot retry loop; the dataplane
// increments epoch and sets in_progress around every directory mutation,
// so a handful of retries comfortably outlasts a concurrent update.
const maxEpochRetries = 50

// CounterPair is one packets/bytes pair, the shape both per-interface
// rx/tx counters and per-ACL per-rule counters share.
type CounterPair struct {
	Packets uint64
	Bytes   uint64
}

// InterfaceCounter is one row of Interface()'s projection: a name paired
// with its rx/tx counters.
type InterfaceCounter struct {
	Name string
	Rx   CounterPair
	Tx   CounterPair
}

// ACLCounter is one rule's packet/byte counters within one ACL's counter
// array.
type ACLCounter struct {
	ACL  string
	Rule int
	CounterPair
}

// readPairVector reads count contiguous {packets,bytes} pairs starting at
// off.
func (r *Region) readPairVector(off, count int) []CounterPair {
	out := make([]CounterPair, 0, count)
	for i := 0; i < count; i++ {
		base := off + i*16
		if base+16 > len(r.data) {
			break
		}
		out = append(out, CounterPair{
			Packets: le64(r.data[base : base+8]),
			Bytes:   le64(r.data[base+8 : base+16]),
		})
	}
	return out
}

// readNameVector reads count remote string pointers starting at off and
// rebases+decodes each one. A pointer that fails to rebase (e.g. it was
// torn mid-update) yields "" rather than a fault.
func (r *Region) readNameVector(off, count int) []string {
	out := make([]string, count)
	for i := 0; i < count; i++ {
		base := off + i*8
		if base+8 > len(r.data) {
			break
		}
		ptr := le64(r.data[base : base+8])
		strOff, ok := r.rebaseOffset(ptr)
		if !ok {
			epochRetryLog.Printf("stats: name pointer %d did not rebase, skipping", ptr)
			continue
		}
		end := strOff + nameWidth
		if end > len(r.data) {
			end = len(r.data)
		}
		out[i] = cString(r.data[strOff:end])
	}
	return out
}

// scanConsistent retries fn while the header's epoch is changing or an
// update is in_progress, so a caller gets a snapshot that did not tear
// mid-scan. After maxEpochRetries it gives up and returns the last scan
// rather than blocking forever.
func (r *Region) scanConsistent(fn func() error) error {
	for attempt := 0; attempt < maxEpochRetries; attempt++ {
		before := r.currentEpoch()
		inProgress := r.currentInProgress()
		if err := fn(); err != nil {
			return err
		}
		after := r.currentEpoch()
		if inProgress == 0 && before == after {
			return nil
		}
		epochRetryLog.Printf("stats: scan raced a directory update (epoch %d -> %d, in_progress=%d), retrying", before, after, inProgress)
	}
	return nil
}

// Interface projects one record per element of "/if/names", pairing each
// with the parallel "/if/rx" and "/if/tx" counters.
func (r *Region) Interface() ([]InterfaceCounter, error) {
	var out []InterfaceCounter
	err := r.scanConsistent(func() error {
		entries, err := r.directory()
		if err != nil {
			return err
		}
		namesEnt, ok := findEntry(entries, "/if/names")
		if !ok {
			return ErrDirectoryEntryNotFound
		}
		rxEnt, ok := findEntry(entries, "/if/rx")
		if !ok {
			return ErrDirectoryEntryNotFound
		}
		txEnt, ok := findEntry(entries, "/if/tx")
		if !ok {
			return ErrDirectoryEntryNotFound
		}

		namesOff, namesCount, ok := r.resolveIndirectVector(namesEnt.Raw)
		if !ok {
			return ErrDirectoryEntryNotFound
		}
		rxOff, _, ok := r.resolveIndirectVector(rxEnt.Raw)
		if !ok {
			return ErrDirectoryEntryNotFound
		}
		txOff, _, ok := r.resolveIndirectVector(txEnt.Raw)
		if !ok {
			return ErrDirectoryEntryNotFound
		}

		names := r.readNameVector(namesOff, namesCount)
		rx := r.readPairVector(rxOff, namesCount)
		tx := r.readPairVector(txOff, namesCount)

		out = make([]InterfaceCounter, namesCount)
		for i := 0; i < namesCount; i++ {
			ic := InterfaceCounter{Name: names[i]}
			if i < len(rx) {
				ic.Rx = rx[i]
			}
			if i < len(tx) {
				ic.Tx = tx[i]
			}
			out[i] = ic
		}
		return nil
	})
	return out, err
}

// ACL projects every per-ACL counter array into flat {acl, rule, packets,
// bytes} rows. Rule indexing follows LegacyIndexing (see Region).
func (r *Region) ACL() ([]ACLCounter, error) {
	var out []ACLCounter
	err := r.scanConsistent(func() error {
		entries, err := r.directory()
		if err != nil {
			return err
		}
		out = out[:0]
		for _, e := range aclEntries(entries) {
			off, count, ok := r.resolveIndirectVector(e.Raw)
			if !ok || count == 0 {
				continue
			}
			pairs := r.readPairVector(off, count)
			rules := legacyTrim(pairs, r.LegacyIndexing)
			for i, p := range rules {
				out = append(out, ACLCounter{ACL: e.Name, Rule: i, CounterPair: p})
			}
		}
		return nil
	})
	return out, err
}

// legacyTrim drops the reserved element of a per-ACL counter array: index
// 0 when legacy is false (the default), the last element when legacy is
// true.
func legacyTrim(pairs []CounterPair, legacy bool) []CounterPair {
	if len(pairs) == 0 {
		return pairs
	}
	if legacy {
		return pairs[:len(pairs)-1]
	}
	return pairs[1:]
}
