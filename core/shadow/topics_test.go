package shadow

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewTopicsDefaults(t *testing.T) {
	tp := NewTopics("", "esp32-color-shadow", "")
	assert.Equal(t, "$aws/things/esp32-color-shadow/shadow/update", tp.Update)
	assert.Equal(t, "$aws/things/esp32-color-shadow/shadow/update/delta", tp.Delta)
	assert.Equal(t, "esp32/commands/esp32-color-shadow", tp.Command)
}

func TestNewTopicsCustom(t *testing.T) {
	tp := NewTopics("lab/", "box1", "cmds/")
	assert.Equal(t, "lab/things/box1/shadow/update", tp.Update)
	assert.Equal(t, "cmds/box1", tp.Command)
}

func TestRoute(t *testing.T) {
	tp := NewTopics("", "box", "")
	assert.Equal(t, RouteDelta, tp.Route(tp.Delta))
	assert.Equal(t, RouteCommand, tp.Route(tp.Command))
	assert.Equal(t, RouteIgnore, tp.Route(tp.Update))
	assert.Equal(t, RouteIgnore, tp.Route("other/topic"))
}
