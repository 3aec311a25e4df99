package client

import "github.com/packetdp/vppclient/pack"

// The handshake messages are not part of the JSON-derived schema.Catalog:
// they are fixed, packed, big-endian wire layouts, present on every
// dataplane regardless of which API documents the caller loads.
// sockclntCreateReplyID (16) doubles as the message id a RecvSingle call
// checks the reply against.
const (
	sockclntCreateID      uint16 = 15
	sockclntCreateReplyID uint16 = 16

	// nameFieldWidth is the padded width of the null-terminated client and
	// message-table name fields.
	nameFieldWidth = 64
)

var messageTableEntryDesc = pack.NewStruct("message_table_entry", true, []pack.Field{
	{Name: "index", Desc: pack.NewPrimitive(pack.U16)},
	{Name: "name", Desc: pack.FixedString{N: nameFieldWidth}},
})

var sockclntCreateDesc = pack.NewStruct("sockclnt_create", true, []pack.Field{
	{Name: "_vl_msg_id", Desc: pack.NewPrimitive(pack.U16)},
	{Name: "context", Desc: pack.NewPrimitive(pack.U32)},
	{Name: "name", Desc: pack.FixedString{N: nameFieldWidth}},
})

var sockclntCreateReplyDesc = pack.NewStruct("sockclnt_create_reply", true, []pack.Field{
	{Name: "_vl_msg_id", Desc: pack.NewPrimitive(pack.U16)},
	{Name: "client_index", Desc: pack.NewPrimitive(pack.U32)},
	{Name: "context", Desc: pack.NewPrimitive(pack.U32)},
	{Name: "response", Desc: pack.NewPrimitive(pack.I32)},
	{Name: "index", Desc: pack.NewPrimitive(pack.U32)},
	{Name: "count", Desc: pack.NewPrimitive(pack.U16)},
	{Name: "message_table", Desc: &pack.DynArray{Elem: messageTableEntryDesc}, Refer: "count"},
})

// handshakeClientName is the name this client registers under with the
// dataplane.
const handshakeClientName = "rsvpp"
