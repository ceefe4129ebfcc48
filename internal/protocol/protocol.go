package protocol

import "encoding/json"

const Version = "flood-1"

// Message types.
const (
	TypeHello   = "HELLO"   // client -> server handshake
	TypeWelcome = "WELCOME" // server -> client handshake reply
	TypeState   = "STATE"   // server -> client frame snapshot
	TypeNotice  = "NOTICE"  // server -> client notification
	TypeEvent   = "EVENT"   // server -> client active narrative event
	TypeAct     = "ACT"     // client -> server input/command
	TypeError   = "ERROR"   // server -> client rejection
)

// BaseMessage lets us route unknown JSON messages by type.
type BaseMessage struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version,omitempty"`
}

func DecodeBase(b []byte) (BaseMessage, error) {
	var m BaseMessage
	err := json.Unmarshal(b, &m)
	return m, err
}
