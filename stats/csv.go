package stats

import (
	"io"

	"github.com/gocarina/gocsv"
)

// interfaceRow and aclRow are flat, gocsv-tagged projections of
// InterfaceCounter/ACLCounter. gocsv marshals plain exported fields; kept
// separate from the view types so those stay free to carry the nested
// CounterPair shape the rest of the package works with.
type interfaceRow struct {
	Name      string `csv:"name"`
	RxPackets uint64 `csv:"rx_packets"`
	RxBytes   uint64 `csv:"rx_bytes"`
	TxPackets uint64 `csv:"tx_packets"`
	TxBytes   uint64 `csv:"tx_bytes"`
}

type aclRow struct {
	ACL     string `csv:"acl"`
	Rule    int    `csv:"rule"`
	Packets uint64 `csv:"packets"`
	Bytes   uint64 `csv:"bytes"`
}

// WriteInterfaceCSV marshals interface counters to w as CSV with
// gocsv.Marshal.
func WriteInterfaceCSV(w io.Writer, counters []InterfaceCounter) error {
	rows := make([]*interfaceRow, len(counters))
	for i, c := range counters {
		rows[i] = &interfaceRow{
			Name:      c.Name,
			RxPackets: c.Rx.Packets,
			RxBytes:   c.Rx.Bytes,
			TxPackets: c.Tx.Packets,
			TxBytes:   c.Tx.Bytes,
		}
	}
	return gocsv.Marshal(rows, w)
}

// WriteACLCSV marshals per-rule ACL counters to w.
func WriteACLCSV(w io.Writer, counters []ACLCounter) error {
	rows := make([]*aclRow, len(counters))
	for i, c := range counters {
		rows[i] = &aclRow{ACL: c.ACL, Rule: c.Rule, Packets: c.Packets, Bytes: c.Bytes}
	}
	return gocsv.Marshal(rows, w)
}
