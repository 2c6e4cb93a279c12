package a2a

import (
	"encoding/json"
	"net/http"
)

// WellKnownCardPath is the discovery path for the agent card. The
// no-extension variant is accepted as well.
const (
	WellKnownCardPath      = "/.well-known/agent-card.json"
	WellKnownCardPathNoExt = "/.well-known/agent-card"
)

// AgentCapabilities advertises the protocol features the agent supports.
type AgentCapabilities struct {
	Streaming              bool `json:"streaming"`
	PushNotifications      bool `json:"pushNotifications"`
	StateTransitionHistory bool `json:"stateTransitionHistory"`
}

// AgentSkill describes one capability of the agent for discovery.
type AgentSkill struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Examples    []string `json:"examples,omitempty"`
	InputModes  []string `json:"inputModes,omitempty"`
	OutputModes []string `json:"outputModes,omitempty"`
}

// AgentCard is the agent's discovery document, served raw (no JSON-RPC
// envelope) at /.well-known/agent-card.json.
type AgentCard struct {
	ProtocolVersion    string            `json:"protocolVersion,omitempty"`
	Name               string            `json:"name"`
	Description        string            `json:"description,omitempty"`
	URL                string            `json:"url,omitempty"`
	Version            string            `json:"version,omitempty"`
	Capabilities       AgentCapabilities `json:"capabilities"`
	DefaultInputModes  []string          `json:"defaultInputModes,omitempty"`
	DefaultOutputModes []string          `json:"defaultOutputModes,omitempty"`
	Skills             []AgentSkill      `json:"skills"`
	SecuritySchemes    map[string]any    `json:"securitySchemes,omitempty"`
	PreferredTransport string            `json:"preferredTransport,omitempty"`
}

// DefaultCard fills in the fields the protocol expects to be present.
func DefaultCard(name, description string) AgentCard {
	return AgentCard{
		ProtocolVersion:    "0.3.0",
		Name:               name,
		Description:        description,
		Version:            "1.0.0",
		Capabilities:       AgentCapabilities{Streaming: true},
		DefaultInputModes:  []string{"text/plain"},
		DefaultOutputModes: []string{"text/plain"},
		Skills:             []AgentSkill{},
		PreferredTransport: "JSONRPC",
	}
}

// ServeCard responds with the agent card.
func (h *Handler) ServeCard(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.card)
}
