package realtime

import (
	"encoding/json"
	"fmt"
)

// ClientCommand is the closed client-to-server command union. The marker
// method seals the set to the four variants below.
type ClientCommand interface{ clientCommand() }

// SubscribeCommand requests delivery of a room's events.
type SubscribeCommand struct {
	Room string `json:"room"`
}

func (SubscribeCommand) clientCommand() {}

// UnsubscribeCommand stops delivery of a room's events.
type UnsubscribeCommand struct {
	Room string `json:"room"`
}

func (UnsubscribeCommand) clientCommand() {}

// PingCommand is a client-initiated health check.
type PingCommand struct {
	Timestamp int64 `json:"timestamp"`
}

func (PingCommand) clientCommand() {}

// PongCommand answers a server heartbeat.
type PongCommand struct {
	Timestamp int64 `json:"timestamp"`
}

func (PongCommand) clientCommand() {}

type commandEnvelope struct {
	Action string          `json:"action"`
	Data   json.RawMessage `json:"data"`
}

const (
	actionSubscribe   = "Subscribe"
	actionUnsubscribe = "Unsubscribe"
	actionPing        = "Ping"
	actionPong        = "Pong"
)

// DecodeClientCommand parses a {"action": ..., "data": {...}} frame.
func DecodeClientCommand(data []byte) (ClientCommand, error) {
	var env commandEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, err
	}

	switch env.Action {
	case actionSubscribe:
		var cmd SubscribeCommand
		if err := json.Unmarshal(env.Data, &cmd); err != nil {
			return nil, err
		}
		return cmd, nil
	case actionUnsubscribe:
		var cmd UnsubscribeCommand
		if err := json.Unmarshal(env.Data, &cmd); err != nil {
			return nil, err
		}
		return cmd, nil
	case actionPing:
		var cmd PingCommand
		if err := json.Unmarshal(env.Data, &cmd); err != nil {
			return nil, err
		}
		return cmd, nil
	case actionPong:
		var cmd PongCommand
		if err := json.Unmarshal(env.Data, &cmd); err != nil {
			return nil, err
		}
		return cmd, nil
	default:
		return nil, fmt.Errorf("unknown client action %q", env.Action)
	}
}

// EncodeClientCommand renders a command in the wire format. Used by tests
// and by any Go client of the service.
func EncodeClientCommand(cmd ClientCommand) ([]byte, error) {
	var action string
	switch cmd.(type) {
	case SubscribeCommand:
		action = actionSubscribe
	case UnsubscribeCommand:
		action = actionUnsubscribe
	case PingCommand:
		action = actionPing
	case PongCommand:
		action = actionPong
	default:
		return nil, fmt.Errorf("unknown client command type %T", cmd)
	}

	data, err := json.Marshal(cmd)
	if err != nil {
		return nil, err
	}
	return json.Marshal(commandEnvelope{Action: action, Data: data})
}
