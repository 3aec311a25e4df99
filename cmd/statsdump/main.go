// statsdump is a minimal reference implementation of a vppclient stats
// consumer: it connects to the dataplane's stats socket, scrapes the
// interface and ACL counter views, and writes them to stdout as CSV.
package main

import (
	"flag"
	"log"
	"os"

	"github.com/m-lab/go/flagx"
	"github.com/m-lab/go/rtx"

	"github.com/packetdp/vppclient/stats"
)

var (
	socketPath = flag.String("socket", "/run/vpp/stats.sock", "stats segment socket to dial")
	view       = flag.String("view", "interface", "view to dump: interface or acl")
	legacyACL  = flag.Bool("legacy_acl_indexing", false, "treat the last element of each ACL counter array as reserved instead of the first")
)

func main() {
	flag.Parse()
	rtx.Must(flagx.ArgsFromEnv(flag.CommandLine), "Could not get args from environment variables")

	c, err := stats.Connect(*socketPath)
	rtx.Must(err, "Could not connect to %q", *socketPath)
	defer c.Close()
	c.LegacyIndexing = *legacyACL

	switch *view {
	case "interface":
		counters, err := c.Interface()
		rtx.Must(err, "Could not scrape interface counters")
		rtx.Must(stats.WriteInterfaceCSV(os.Stdout, counters), "Could not write CSV")
	case "acl":
		counters, err := c.ACL()
		rtx.Must(err, "Could not scrape ACL counters")
		rtx.Must(stats.WriteACLCSV(os.Stdout, counters), "Could not write CSV")
	default:
		log.Fatalf("unknown -view %q, want interface or acl", *view)
	}
}
