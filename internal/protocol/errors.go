package protocol

const (
	// Protocol/transport validation.
	ErrProtoBadRequest = "E_PROTO_BAD_REQUEST"
	ErrProtoVersion    = "E_PROTO_VERSION"

	// Command layer.
	ErrBadRequest    = "E_BAD_REQUEST"
	ErrBadArchetype  = "E_BAD_ARCHETYPE"
	ErrBadChoice     = "E_BAD_CHOICE"
	ErrNoActiveEvent = "E_NO_ACTIVE_EVENT"
	ErrSceneNotReady = "E_SCENE_NOT_READY"
	ErrNotStarted    = "E_NOT_STARTED"
	ErrInternal      = "E_INTERNAL"
)

var knownCodes = map[string]struct{}{
	ErrProtoBadRequest: {},
	ErrProtoVersion:    {},
	ErrBadRequest:      {},
	ErrBadArchetype:    {},
	ErrBadChoice:       {},
	ErrNoActiveEvent:   {},
	ErrSceneNotReady:   {},
	ErrNotStarted:      {},
	ErrInternal:        {},
}

func IsKnownCode(code string) bool {
	if code == "" {
		return true
	}
	_, ok := knownCodes[code]
	return ok
}
