// Package client implements the handshake and naming layer: it performs the
// initial sockclnt_create/_reply exchange, downloads the remote id/name/CRC
// table, maps outgoing message types to remote ids, validates CRCs, assigns
// context ids, and exposes the per-service API the schema's catalog
// describes.
package client

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/packetdp/vppclient/pack"
	"github.com/packetdp/vppclient/schema"
	"github.com/packetdp/vppclient/session"
	"github.com/packetdp/vppclient/transport"
)

// DefaultTimeout is the default per-call deadline.
const DefaultTimeout = 3000 * time.Millisecond

// controlPing and controlPingReply are the well-known messages the
// streaming dispatch sends (and waits for) to terminate a request/stream
// call. They must be present in whatever schema documents the caller loaded
// (every real VPP API catalog carries them).
const (
	controlPingName      = "control_ping"
	controlPingReplyName = "control_ping_reply"
)

// CatalogEntry is one row of the remote id/name/CRC table downloaded during
// the handshake.
type CatalogEntry struct {
	ID   uint16
	Name string
	CRC  string
}

// Client owns one handshaken session against the dataplane: the remote
// name/id maps, the assigned client index, and the JSON-schema-derived
// message catalog used to encode/decode and dispatch calls.
type Client struct {
	sess    *session.Session
	cat     *schema.Catalog
	cancel  context.CancelFunc
	runDone chan struct{}

	timeout     time.Duration
	clientIndex uint32

	byName map[string]CatalogEntry
	byID   map[uint16]CatalogEntry

	crcChecked map[string]bool
}

// Connect starts the session reader on t (an already-connected transport,
// e.g. from transport.Dial), performs the create/reply handshake, and
// returns a ready Client bound to cat (the catalog built by schema.Build from the caller's
// JSON API documents). The returned Client owns t and the reader goroutine
// for its lifetime; Close tears both down.
func Connect(t transport.Transport, cat *schema.Catalog) (*Client, error) {
	sess := session.New(t)
	ctx, cancel := context.WithCancel(context.Background())
	runDone := make(chan struct{})
	go func() {
		defer close(runDone)
		sess.Run(ctx)
	}()

	c := &Client{
		sess:       sess,
		cat:        cat,
		cancel:     cancel,
		runDone:    runDone,
		timeout:    DefaultTimeout,
		byName:     map[string]CatalogEntry{},
		byID:       map[uint16]CatalogEntry{},
		crcChecked: map[string]bool{},
	}

	if err := c.handshake(); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

// handshake runs the connect sequence: allocate ctx=1, send
// sockclnt_create, then receive the reply on context 0, the remote
// handshake quirk, special-cased here and nowhere else in the client.
func (c *Client) handshake() error {
	hsCtx := c.sess.NextContext() // always 1: the first allocation from a fresh counter.

	req := pack.NewRecord(sockclntCreateDesc)
	req.SetUint16("_vl_msg_id", sockclntCreateID)
	req.SetUint32("context", hsCtx)
	req.SetString("name", handshakeClientName)

	buf := make([]byte, sockclntCreateDesc.Size(req))
	if _, err := sockclntCreateDesc.Encode(buf, req); err != nil {
		return err
	}
	if err := c.sess.Send(buf, c.timeout); err != nil {
		return err
	}

	entry, err := c.sess.RecvSingle(context.Background(), 0, sockclntCreateReplyID, c.timeout)
	if err != nil {
		return err
	}
	v, _, err := sockclntCreateReplyDesc.Decode(entry.Payload, 0)
	if err != nil {
		return err
	}
	rec := v.(*pack.Record)

	if response := rec.GetInt32("response"); response != 0 {
		return &RemoteFailureError{Code: response}
	}
	// The assigned client index rides in the reply's index field; the
	// client_index field is transmitted as zero (it is what the session
	// demultiplexes the reply on, the context-0 quirk).
	c.clientIndex = rec.GetUint32("index")

	for _, raw := range rec.GetVec("message_table") {
		tr, ok := raw.(*pack.Record)
		if !ok {
			continue
		}
		idx := tr.GetUint16("index")
		full := tr.GetString("name")
		sep := strings.LastIndexByte(full, '_')
		if sep < 0 {
			return ErrBadHandshake
		}
		ent := CatalogEntry{ID: idx, Name: full[:sep], CRC: full[sep+1:]}
		c.byName[ent.Name] = ent
		c.byID[idx] = ent
	}
	return nil
}

// SetTimeout overrides the per-call deadline.
func (c *Client) SetTimeout(ms int) {
	c.timeout = time.Duration(ms) * time.Millisecond
}

// ClientIndex returns the index the dataplane assigned this connection at
// handshake time.
func (c *Client) ClientIndex() uint32 { return c.clientIndex }

// Close stops the reader goroutine and closes the underlying transport.
func (c *Client) Close() error {
	c.cancel()
	err := c.sess.Close()
	<-c.runDone
	return err
}

// resolve looks up name's remote catalog entry and checks its compile-time
// CRC (from the schema's MessageDef) against the entry's CRC, exactly once
// per message type; a mismatch surfaces at the first use of that type.
func (c *Client) resolve(name string) (CatalogEntry, *schema.MessageDef, error) {
	md, ok := c.cat.Messages[name]
	if !ok {
		return CatalogEntry{}, nil, ErrUnknownMessage
	}
	entry, ok := c.byName[name]
	if !ok {
		return CatalogEntry{}, nil, ErrUnknownMessage
	}
	if !c.crcChecked[name] {
		if entry.CRC != md.CRC {
			CrcMismatchCount.Inc()
			return CatalogEntry{}, nil, &CrcMismatchError{Name: name, Expected: md.CRC, Got: entry.CRC}
		}
		c.crcChecked[name] = true
	}
	return entry, md, nil
}

// GetMsgID returns the remote numeric id resolved for a message type name.
func (c *Client) GetMsgID(name string) (uint16, error) {
	entry, _, err := c.resolve(name)
	if err != nil {
		return 0, err
	}
	return entry.ID, nil
}

func (c *Client) stampAndEncode(md *schema.MessageDef, id uint16, rec *pack.Record, ctx uint32) ([]byte, error) {
	rec.SetUint16("_vl_msg_id", id)
	rec.SetUint32("client_index", c.clientIndex)
	rec.SetUint32("context", ctx)
	buf := make([]byte, md.Struct.Size(rec))
	if _, err := md.Struct.Encode(buf, rec); err != nil {
		return nil, err
	}
	return buf, nil
}

// SendMsg resolves name's remote id, stamps _vl_msg_id/client_index/context
// onto rec, allocates a fresh context id, and sends it.
func (c *Client) SendMsg(name string, rec *pack.Record) (uint32, error) {
	return c.SendMsgWithCtx(name, rec, c.sess.NextContext())
}

// SendMsgWithCtx is SendMsg with a caller-supplied context id, used to
// reuse a prior context for the control-ping that completes a stream.
func (c *Client) SendMsgWithCtx(name string, rec *pack.Record, ctx uint32) (uint32, error) {
	entry, md, err := c.resolve(name)
	if err != nil {
		return 0, err
	}
	buf, err := c.stampAndEncode(md, entry.ID, rec, ctx)
	if err != nil {
		return 0, err
	}
	if err := c.sess.Send(buf, c.timeout); err != nil {
		return 0, err
	}
	return ctx, nil
}

// decodeReply decodes one queued entry against the message type named name,
// checking retval if the type carries one.
func (c *Client) decodeReply(name string, e session.Entry) (*pack.Record, error) {
	md := c.cat.Messages[name]
	v, _, err := md.Struct.Decode(e.Payload, 0)
	if err != nil {
		return nil, err
	}
	rec := v.(*pack.Record)
	if md.HasRetval {
		if retval := rec.GetInt32("retval"); retval != 0 {
			RemoteFailureCount.Inc()
			return rec, &RemoteFailureError{Code: retval, Text: c.cat.Lookup(retval)}
		}
	}
	return rec, nil
}

// RecvMsg waits for exactly one reply of type name on ctx, the shape every
// non-streaming service call needs.
func (c *Client) RecvMsg(name string, ctx uint32) (*pack.Record, error) {
	entry, _, err := c.resolve(name)
	if err != nil {
		return nil, err
	}
	e, err := c.sess.RecvSingle(context.Background(), ctx, entry.ID, c.timeout)
	if err != nil {
		return nil, err
	}
	return c.decodeReply(name, e)
}

// Recv returns every reply queued so far for ctx without checking message
// id or count, used by streaming callers.
func (c *Client) Recv(ctx uint32) ([]session.Entry, error) {
	return c.sess.Recv(context.Background(), ctx, c.timeout)
}

// Call performs a non-streaming service call: send request, await one
// reply of the declared reply type, check retval if present, return it.
func (c *Client) Call(serviceName string, request *pack.Record) (*pack.Record, error) {
	start := time.Now()
	defer func() { CallLatencyHistogram.Observe(time.Since(start).Seconds()) }()

	svc, ok := c.cat.Services[serviceName]
	if !ok {
		return nil, ErrUnknownMessage
	}
	ctx, err := c.SendMsg(svc.Request, request)
	if err != nil {
		return nil, err
	}
	return c.RecvMsg(svc.Reply, ctx)
}

// CallStream performs a streaming service call: send request, immediately
// send control_ping reusing the same context, then collect replies whose
// message id matches the declared reply type until control_ping_reply
// arrives on that context.
func (c *Client) CallStream(serviceName string, request *pack.Record) ([]*pack.Record, error) {
	start := time.Now()
	defer func() { CallLatencyHistogram.Observe(time.Since(start).Seconds()) }()

	svc, ok := c.cat.Services[serviceName]
	if !ok || !svc.Stream {
		return nil, ErrUnknownMessage
	}
	ctx, err := c.SendMsg(svc.Request, request)
	if err != nil {
		return nil, err
	}
	if _, err := c.SendMsgWithCtx(controlPingName, pack.NewRecord(c.cat.Messages[controlPingName].Struct), ctx); err != nil {
		return nil, err
	}
	pingReplyEntry, _, err := c.resolve(controlPingReplyName)
	if err != nil {
		return nil, err
	}
	replyEntry, _, err := c.resolve(svc.Reply)
	if err != nil {
		return nil, err
	}

	var replies []*pack.Record
	for {
		entries, err := c.Recv(ctx)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if e.Preamble.MsgID == pingReplyEntry.ID {
				return replies, nil
			}
			if e.Preamble.MsgID != replyEntry.ID {
				return nil, &session.MsgIDMismatchError{Expected: replyEntry.ID, Got: e.Preamble.MsgID}
			}
			rec, err := c.decodeReply(svc.Reply, e)
			if err != nil {
				log.Printf("client: stream %s: decode error on ctx %d: %v", serviceName, ctx, err)
				continue
			}
			replies = append(replies, rec)
		}
	}
}
