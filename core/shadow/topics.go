package shadow

import "strings"

const (
	DefaultRoot          = "$aws"
	DefaultCommandPrefix = "esp32/commands"
)

// Route tells what an inbound topic carries.
type Route int

const (
	RouteIgnore Route = iota
	RouteDelta
	RouteCommand
)

// Topics holds the three topics of one thing.
type Topics struct {
	// Update receives every outbound report.
	Update string
	// Delta carries desired state not yet matched by reported state.
	Delta string
	// Command carries direct commands.
	Command string
}

// NewTopics builds the topic set for thing. Empty root and commandPrefix
// fall back to DefaultRoot and DefaultCommandPrefix.
func NewTopics(root, thing, commandPrefix string) Topics {
	if root == "" {
		root = DefaultRoot
	}
	if commandPrefix == "" {
		commandPrefix = DefaultCommandPrefix
	}
	root = strings.TrimSuffix(root, "/")
	commandPrefix = strings.TrimSuffix(commandPrefix, "/")
	update := root + "/things/" + thing + "/shadow/update"
	return Topics{
		Update:  update,
		Delta:   update + "/delta",
		Command: commandPrefix + "/" + thing,
	}
}

// Route classifies an inbound topic.
func (t Topics) Route(topic string) Route {
	switch topic {
	case t.Delta:
		return RouteDelta
	case t.Command:
		return RouteCommand
	default:
		return RouteIgnore
	}
}
