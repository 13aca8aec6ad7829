package model

import "strings"

// ActionDispense is the only action understood on the command topic.
const ActionDispense = "dispense"

// CommandSource tells where a command came from.
type CommandSource int

const (
	// SourceTopic is the direct command topic.
	SourceTopic CommandSource = iota
	// SourceShadowDeltaCompat is the legacy desired.color shadow delta.
	SourceShadowDeltaCompat
)

func (s CommandSource) String() string {
	if s == SourceShadowDeltaCompat {
		return "shadow_delta"
	}
	return "topic"
}

// Command is a decoded inbound request for a physical action.
type Command struct {
	Action    string
	Color     string
	CommandID uint64
	Source    CommandSource
}

// IsDispense reports whether the command is a dispense request carrying a color.
func (c Command) IsDispense() bool {
	return strings.EqualFold(c.Action, ActionDispense) && c.Color != ""
}
