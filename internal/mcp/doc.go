// Package mcp exposes the question bridge as a Model Context Protocol tool.
//
// The server registers a single "ask" tool that runs one question through
// the responder and returns the answer as text. It is served over stdio by
// the askgpt mcp command so editors and agents can query the same responder
// the game uses.
package mcp
