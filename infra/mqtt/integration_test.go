package mqtt

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/kilianp07/pillbox/core/clock"
	"github.com/kilianp07/pillbox/core/model"
	"github.com/kilianp07/pillbox/core/shadow"
	"github.com/kilianp07/pillbox/infra/logger"
)

// TestIntegration drives a session and a bench publisher through a real
// Mosquitto broker.
func TestIntegration(t *testing.T) {
	if os.Getenv("DOCKER_AVAILABLE") != "true" && os.Getenv("DOCKER_AVAILABLE") != "1" {
		t.Skip("docker not available")
	}
	ctx := context.Background()
	req := tc.ContainerRequest{
		Image:        "eclipse-mosquitto:2.0",
		ExposedPorts: []string{"1883/tcp"},
		Cmd:          []string{"mosquitto", "-c", "/mosquitto-no-auth.conf"},
		WaitingFor:   wait.ForListeningPort("1883/tcp"),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("failed to start container: %v", err)
	}
	defer func() {
		if err := container.Terminate(ctx); err != nil {
			t.Fatalf("failed to terminate container: %v", err)
		}
	}()

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("failed to get container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "1883")
	if err != nil {
		t.Fatalf("failed to get mapped port: %v", err)
	}
	broker := fmt.Sprintf("tcp://%s:%s", host, port.Port())
	topics := shadow.NewTopics("", "it-box", "")
	clk := clock.Func(func() (time.Time, bool) { return time.Now().UTC(), true })

	sess, err := NewSession(Config{Broker: broker, ClientID: "it-device"}, topics, nil, clk, clock.Resolver{}, logger.NopLogger{}, nil)
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	defer sess.Disconnect(100 * time.Millisecond)

	h := &recordHandler{}
	deadline := time.Now().Add(10 * time.Second)
	for sess.State() != model.Connected && time.Now().Before(deadline) {
		sess.Poll(ctx, h)
		time.Sleep(200 * time.Millisecond)
	}
	if sess.State() != model.Connected {
		t.Fatalf("session never connected")
	}

	pub, err := Dial(Config{Broker: broker, ClientID: "it-bench"}, topics, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer pub.Close()
	if err := pub.SendCommand(model.Command{Action: "dispense", Color: "GREEN", CommandID: 11}); err != nil {
		t.Fatalf("send: %v", err)
	}

	for len(h.commands) == 0 && time.Now().Before(deadline) {
		sess.Poll(ctx, h)
		time.Sleep(20 * time.Millisecond)
	}
	if len(h.commands) != 1 || h.commands[0].Color != "GREEN" || h.commands[0].CommandID != 11 {
		t.Fatalf("command not routed: %+v", h.commands)
	}
	if err := sess.ClearDesired(); err != nil {
		t.Fatalf("clear desired: %v", err)
	}
}
