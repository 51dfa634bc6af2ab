package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/instinct/askgpt/internal/errors"
)

// Request is the client to responder frame.
//
// Wire format:
//
//	{"question": "...", "inventory": "...", "disconnect": false}
type Request struct {
	// Question is the player's free text with the trigger word removed.
	Question string `json:"question"`

	// Inventory is the flattened "name:count," inventory summary.
	Inventory string `json:"inventory"`

	// Disconnect marks the terminal frame of a session.
	Disconnect bool `json:"disconnect"`
}

// Response is the responder to client frame.
//
// Wire format:
//
//	{"response": "..."}
type Response struct {
	Response string `json:"response"`
}

// QueryRequest builds the normal request frame for one question.
func QueryRequest(question, inventory string) *Request {
	return &Request{Question: question, Inventory: inventory}
}

// DisconnectRequest builds the terminal frame of a session.
func DisconnectRequest() *Request {
	return &Request{Disconnect: true}
}

// Encode serializes a frame to a single line terminated by '\n'.
// encoding/json escapes control characters, so the payload never contains a
// raw newline.
func Encode(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}

	return append(data, '\n'), nil
}

// DecodeResponse parses one response line.
//
// Returns ProtocolError if the line is not JSON, is not an object, lacks the
// response field, or carries a non-string response.
func DecodeResponse(line []byte) (string, error) {
	obj, err := decodeObject(line)
	if err != nil {
		return "", err
	}

	if _, ok := obj["response"]; !ok {
		return "", &errors.ProtocolError{RawData: string(line), Err: errors.ErrMissingResponse}
	}

	if err := validate(responseSchema, obj); err != nil {
		return "", &errors.ProtocolError{RawData: string(line), Err: err}
	}

	resp, _ := obj["response"].(string)

	return resp, nil
}

// DecodeRequest parses one request line on the responder side.
func DecodeRequest(line []byte) (*Request, error) {
	obj, err := decodeObject(line)
	if err != nil {
		return nil, err
	}

	if err := validate(requestSchema, obj); err != nil {
		return nil, &errors.ProtocolError{RawData: string(line), Err: err}
	}

	var req Request
	if err := json.Unmarshal(trimLine(line), &req); err != nil {
		return nil, &errors.ProtocolError{RawData: string(line), Err: err}
	}

	return &req, nil
}

func decodeObject(line []byte) (map[string]any, error) {
	trimmed := trimLine(line)
	if len(trimmed) == 0 {
		return nil, &errors.ProtocolError{RawData: string(line), Err: fmt.Errorf("empty frame")}
	}

	var raw any
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return nil, &errors.ProtocolError{RawData: string(line), Err: fmt.Errorf("decode json: %w", err)}
	}

	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, &errors.ProtocolError{
			RawData: string(line),
			Err:     fmt.Errorf("frame is %T, not an object", raw),
		}
	}

	return obj, nil
}

// trimLine drops the line terminator, tolerating CRLF peers.
func trimLine(line []byte) []byte {
	return bytes.TrimRight(line, "\r\n")
}
