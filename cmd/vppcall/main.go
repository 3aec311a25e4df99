// vppcall is a minimal reference implementation of a vppclient caller: it
// loads one or more JSON API schema documents, connects to a dataplane
// socket, and performs a single request/reply or request/stream service
// call, printing each decoded reply record.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/m-lab/go/flagx"
	"github.com/m-lab/go/rtx"

	"github.com/packetdp/vppclient/client"
	"github.com/packetdp/vppclient/pack"
	"github.com/packetdp/vppclient/schema"
	"github.com/packetdp/vppclient/transport"
)

var (
	socketPath  = flag.String("socket", "/run/vpp/cli.sock", "dataplane API socket to dial")
	serviceName = flag.String("service", "", "service name to call, e.g. show_version")
	stream      = flag.Bool("stream", false, "perform a request/stream call instead of request/reply")
	requestJSON = flag.String("request", "{}", "JSON object of request field values")
	errorsFile  = flag.String("errors", "", "optional C header of _(SYMBOL, code, \"message\") error codes")
	schemaFiles flagx.StringArray
)

func init() {
	flag.Var(&schemaFiles, "schema", "path to a JSON API schema document (repeatable)")
}

func loadCatalog(paths []string) (*schema.Catalog, error) {
	var docs []*schema.Document
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, err
		}
		doc, err := schema.ParseDocument(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
		docs = append(docs, doc)
	}
	return schema.Build(docs)
}

func main() {
	flag.Parse()
	rtx.Must(flagx.ArgsFromEnv(flag.CommandLine), "Could not get args from environment variables")

	if *serviceName == "" {
		log.Fatal("-service is required")
	}
	if len(schemaFiles) == 0 {
		log.Fatal("at least one -schema is required")
	}

	cat, err := loadCatalog(schemaFiles)
	rtx.Must(err, "Could not build catalog from %v", []string(schemaFiles))

	if *errorsFile != "" {
		f, err := os.Open(*errorsFile)
		rtx.Must(err, "Could not open %q", *errorsFile)
		cat.ErrorCodes, err = schema.ParseErrorCodes(f)
		f.Close()
		rtx.Must(err, "Could not parse error codes from %q", *errorsFile)
	}

	svc, ok := cat.Services[*serviceName]
	if !ok {
		log.Fatalf("unknown service %q", *serviceName)
	}
	md, ok := cat.Messages[svc.Request]
	if !ok {
		log.Fatalf("unknown request message %q for service %q", svc.Request, *serviceName)
	}

	var fields map[string]interface{}
	rtx.Must(json.Unmarshal([]byte(*requestJSON), &fields), "Could not parse -request as a JSON object")

	req := md.NewRecord()
	for k, v := range fields {
		req.Values[k] = coerceJSONValue(md.Struct, k, v)
	}

	t, err := transport.Dial("unix", *socketPath)
	rtx.Must(err, "Could not dial %q", *socketPath)

	c, err := client.Connect(t, cat)
	rtx.Must(err, "Could not complete handshake against %q", *socketPath)
	defer c.Close()

	if *stream {
		replies, err := c.CallStream(*serviceName, req)
		rtx.Must(err, "Call %q failed", *serviceName)
		for _, r := range replies {
			fmt.Printf("%+v\n", r.Values)
		}
		return
	}

	reply, err := c.Call(*serviceName, req)
	rtx.Must(err, "Call %q failed", *serviceName)
	fmt.Printf("%+v\n", reply.Values)
}

// coerceJSONValue converts json.Unmarshal-produced values into the Go
// representation the named field's descriptor expects. encoding/json decodes
// every bare number as float64, so an integer field given verbatim to the
// packer would hit the float encode path and be written out as
// math.Float64bits garbage instead of its intended integer value.
func coerceJSONValue(s *pack.Struct, name string, v interface{}) interface{} {
	for _, field := range s.Fields {
		if field.Name == name {
			return coerceForDescriptor(field.Desc, v)
		}
	}
	return v
}

func coerceForDescriptor(d pack.Descriptor, v interface{}) interface{} {
	switch x := v.(type) {
	case float64:
		p, ok := d.(*pack.Primitive)
		if !ok {
			return v
		}
		return coerceNumber(p.Kind, x)
	case []interface{}:
		var elem pack.Descriptor
		switch arr := d.(type) {
		case *pack.DynArray:
			elem = arr.Elem
		case *pack.FixedArray:
			elem = arr.Elem
		default:
			return v
		}
		out := make([]interface{}, len(x))
		for i, e := range x {
			out[i] = coerceForDescriptor(elem, e)
		}
		return out
	default:
		return v
	}
}

func coerceNumber(kind pack.PrimKind, f float64) interface{} {
	switch kind {
	case pack.U8:
		return uint8(f)
	case pack.U16:
		return uint16(f)
	case pack.U32:
		return uint32(f)
	case pack.U64:
		return uint64(f)
	case pack.I8:
		return int8(f)
	case pack.I16:
		return int16(f)
	case pack.I32:
		return int32(f)
	case pack.I64:
		return int64(f)
	default:
		return f
	}
}
