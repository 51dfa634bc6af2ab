// Package protocol implements the newline-delimited JSON frames exchanged
// between the bridge and the responder process.
//
// Every frame is one UTF-8 JSON object terminated by '\n'. The client sends
// request frames:
//
//	{"question":"how do I craft a stone axe?","inventory":"stone:3,","disconnect":false}
//
// and the responder answers each normal request with a response frame:
//
//	{"response":"Place three cobblestone ..."}
//
// A request with "disconnect":true is the terminal frame of a session. It has
// no reply; the client closes the connection right after sending it.
//
// Incoming frames are checked against JSON schemas (see ResponseSchema and
// RequestSchema) so that a structurally wrong frame fails with a
// ProtocolError instead of silently decoding to zero values.
package protocol
