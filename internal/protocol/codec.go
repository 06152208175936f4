package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrMalformed is returned for payloads that are not a JSON object with a
	// string "type" field, or whose fields have the wrong shape.
	ErrMalformed = errors.New("malformed message")
	// ErrUnknownType is returned for well-formed messages whose type is not
	// part of the message set being decoded.
	ErrUnknownType = errors.New("unknown message type")
)

type header struct {
	Type string `json:"type"`
}

// Encode serializes msg as a flat JSON object with its type discriminator
// as the first field.
func Encode(msg Message) ([]byte, error) {
	if msg == nil {
		return nil, fmt.Errorf("encode: nil message")
	}
	body, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", msg.MessageType(), err)
	}
	if len(body) < 2 || body[0] != '{' {
		return nil, fmt.Errorf("encode %s: not an object", msg.MessageType())
	}
	typ, err := json.Marshal(msg.MessageType())
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.Grow(len(body) + len(typ) + 10)
	buf.WriteString(`{"type":`)
	buf.Write(typ)
	if inner := bytes.TrimSpace(body[1 : len(body)-1]); len(inner) > 0 {
		buf.WriteByte(',')
		buf.Write(inner)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// DecodeClient parses a message sent by a participant.
func DecodeClient(b []byte) (ClientMessage, error) {
	typ, err := peekType(b)
	if err != nil {
		return nil, err
	}
	switch typ {
	case TypeJoin:
		return decodeAs[Join](typ, b)
	case TypeUpdate:
		return decodeAs[Update](typ, b)
	case TypeShoot:
		return decodeAs[Shoot](typ, b)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, typ)
	}
}

// DecodeServer parses a message sent by the relay.
func DecodeServer(b []byte) (ServerMessage, error) {
	typ, err := peekType(b)
	if err != nil {
		return nil, err
	}
	switch typ {
	case TypeJoined:
		return decodeAs[Joined](typ, b)
	case TypePlayerJoined:
		return decodeAs[PlayerJoined](typ, b)
	case TypePlayerUpdate:
		return decodeAs[PlayerUpdate](typ, b)
	case TypePlayerShoot:
		return decodeAs[PlayerShoot](typ, b)
	case TypePlayerLeft:
		return decodeAs[PlayerLeft](typ, b)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, typ)
	}
}

func peekType(b []byte) (string, error) {
	if len(bytes.TrimSpace(b)) == 0 {
		return "", fmt.Errorf("%w: empty payload", ErrMalformed)
	}
	var h header
	if err := json.Unmarshal(b, &h); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if h.Type == "" {
		return "", fmt.Errorf("%w: missing type", ErrMalformed)
	}
	return h.Type, nil
}

func decodeAs[T any](typ string, b []byte) (T, error) {
	var out T
	if err := json.Unmarshal(b, &out); err != nil {
		return out, fmt.Errorf("%w: %s: %v", ErrMalformed, typ, err)
	}
	return out, nil
}
