package mqtt

import (
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

type publishedMsg struct {
	topic   string
	qos     byte
	payload []byte
}

// mockClient implements pahoClient for tests.
type mockClient struct {
	mu          sync.Mutex
	opts        *paho.ClientOptions
	open        bool
	connectErr  error
	connectHang bool
	subErr      error
	publishErr  error
	publishHang bool
	connects    int
	disconnects int
	handler     paho.MessageHandler
	subscribed  map[string]byte
	published   []publishedMsg
}

func (m *mockClient) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.open
}

func (m *mockClient) IsConnectionOpen() bool { return m.IsConnected() }

func (m *mockClient) setOpen(v bool) {
	m.mu.Lock()
	m.open = v
	m.mu.Unlock()
}

func (m *mockClient) Connect() paho.Token {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connects++
	if m.connectHang {
		return &dummyToken{timeout: true}
	}
	if m.connectErr != nil {
		return &dummyToken{err: m.connectErr}
	}
	m.open = true
	return &dummyToken{}
}

func (m *mockClient) Disconnect(uint) {
	m.mu.Lock()
	m.disconnects++
	m.open = false
	m.mu.Unlock()
}

func (m *mockClient) Publish(topic string, qos byte, _ bool, payload interface{}) paho.Token {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, _ := payload.([]byte)
	m.published = append(m.published, publishedMsg{topic: topic, qos: qos, payload: b})
	if m.publishHang {
		return &dummyToken{timeout: true}
	}
	return &dummyToken{err: m.publishErr}
}

func (m *mockClient) SubscribeMultiple(filters map[string]byte, cb paho.MessageHandler) paho.Token {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subscribed = filters
	m.handler = cb
	return &dummyToken{err: m.subErr}
}

// deliver simulates a broker message arriving on a paho goroutine.
func (m *mockClient) deliver(topic string, payload string) {
	m.mu.Lock()
	h := m.handler
	if h == nil && m.opts != nil {
		h = m.opts.DefaultPublishHandler
	}
	m.mu.Unlock()
	h(nil, mockMessage{topic: topic, p: []byte(payload)})
}

type dummyToken struct {
	err     error
	timeout bool
}

func (d dummyToken) Wait() bool                     { return !d.timeout }
func (d dummyToken) WaitTimeout(time.Duration) bool { return !d.timeout }
func (d dummyToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	if !d.timeout {
		close(ch)
	}
	return ch
}
func (d dummyToken) Error() error { return d.err }

type mockMessage struct {
	topic string
	p     []byte
}

func (m mockMessage) Duplicate() bool   { return false }
func (m mockMessage) Qos() byte         { return 0 }
func (m mockMessage) Retained() bool    { return false }
func (m mockMessage) Topic() string     { return m.topic }
func (m mockMessage) MessageID() uint16 { return 0 }
func (m mockMessage) Payload() []byte   { return m.p }
func (m mockMessage) Ack()              {}
