package client

import (
	"context"
	"encoding/json"
	"fmt"

	nats "github.com/nats-io/nats.go"
)

// NATSTransport performs request/reply calls over a NATS connection. Each
// method maps to a subject under the service's prefix (e.g. "user.GetProfile")
// and replies use a small envelope so application errors travel apart from
// payloads.
type NATSTransport struct {
	conn   *nats.Conn
	prefix string
}

func NewNATSTransport(conn *nats.Conn, prefix string) *NATSTransport {
	return &NATSTransport{conn: conn, prefix: prefix}
}

type natsEnvelope struct {
	OK    bool            `json:"ok"`
	Error string          `json:"error,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Call publishes req to prefix.method and waits for the reply within ctx.
// An envelope error of "not_found" maps to ErrNotFound so callers and the
// breaker can tell reachable-but-empty from unreachable.
func (t *NATSTransport) Call(ctx context.Context, method string, req, resp any) error {
	data, err := json.Marshal(req)
	if err != nil {
		return err
	}
	msg, err := t.conn.RequestWithContext(ctx, t.prefix+"."+method, data)
	if err != nil {
		return fmt.Errorf("request %s.%s: %w", t.prefix, method, err)
	}
	var env natsEnvelope
	if err := json.Unmarshal(msg.Data, &env); err != nil {
		return fmt.Errorf("decode reply from %s.%s: %w", t.prefix, method, err)
	}
	if !env.OK {
		if env.Error == "not_found" {
			return ErrNotFound
		}
		return fmt.Errorf("%s.%s: %s", t.prefix, method, env.Error)
	}
	if resp != nil && len(env.Data) > 0 {
		return json.Unmarshal(env.Data, resp)
	}
	return nil
}
