package protocol

// Vec is a flat world position; the vertical axis lives client-side.
type Vec struct {
	X float64 `json:"x"`
	Z float64 `json:"z"`
}

// HELLO (client -> server)
type HelloMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	ClientName      string `json:"client_name,omitempty"`
}

// WELCOME (server -> client)
type WelcomeMsg struct {
	Type            string   `json:"type"`
	ProtocolVersion string   `json:"protocol_version"`
	SessionID       string   `json:"session_id"`
	NewGame         bool     `json:"new_game"`
	Stage           string   `json:"stage"`
	Archetypes      []string `json:"archetypes"`
	Restarts        int      `json:"restarts"`
}

// STATE (server -> client), one per rendered frame. Latest wins; the
// transport drops stale frames rather than queueing them.
type StateMsg struct {
	Type             string `json:"type"`
	Stage            string `json:"stage"`
	Phase            string `json:"phase"`
	Timer            int    `json:"timer"`
	Resources        int    `json:"resources"`
	ResourceGoal     int    `json:"resource_goal"`
	Restarts         int    `json:"restarts"`
	HighestResources int    `json:"highest_resources"`
	EvolutionType    string `json:"evolution_type,omitempty"`
	Paused           bool   `json:"paused"`
	NewGame          bool   `json:"new_game"`
	WillToLive       bool   `json:"will_to_live"`

	Player Vec                `json:"player"`
	Camera Vec                `json:"camera"`
	Traits map[string]float64 `json:"traits,omitempty"`

	Triggers      []TriggerRef   `json:"triggers,omitempty"`
	EventCooldown float64        `json:"event_cooldown"`
	Summary       *ChoiceSummary `json:"summary,omitempty"`
}

type TriggerRef struct {
	ID     string `json:"id"`
	Pos    Vec    `json:"pos"`
	Active bool   `json:"active"`
}

type ChoiceSummary struct {
	Counts        map[string]int `json:"counts"`
	DominantTrait string         `json:"dominant_trait"`
	EventCount    int            `json:"event_count"`
}

// NOTICE (server -> client)
type NoticeMsg struct {
	Type     string `json:"type"`
	Severity string `json:"severity"` // "info", "warn", "event"
	Text     string `json:"text"`
	Title    string `json:"title,omitempty"`
}

// EVENT (server -> client), sent when a narrative event opens. Choices
// carry only the display text; the pick goes back by index.
type EventMsg struct {
	Type        string   `json:"type"`
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Choices     []string `json:"choices"`
}

// Act verbs.
const (
	ActMove    = "move"
	ActAction  = "action"
	ActPause   = "pause"
	ActResume  = "resume"
	ActStart   = "start"
	ActRestart = "restart"
	ActChoose  = "choose"
)

// ACT (client -> server)
type ActMsg struct {
	Type string `json:"type"`
	Verb string `json:"verb"`

	Move      *MovePayload `json:"move,omitempty"`      // verb "move"
	Archetype string       `json:"archetype,omitempty"` // verb "start"
	Choice    *int         `json:"choice,omitempty"`    // verb "choose"
	Full      bool         `json:"full,omitempty"`      // verb "restart"
}

type MovePayload struct {
	X         float64 `json:"x"`
	Z         float64 `json:"z"`
	Intensity float64 `json:"intensity"`
}

// ERROR (server -> client)
type ErrorMsg struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
}
