package mqtt

import (
	"fmt"

	"github.com/kilianp07/pillbox/core/model"
	"github.com/kilianp07/pillbox/core/shadow"
	"github.com/kilianp07/pillbox/infra/logger"
)

// Publisher is a short lived client used by bench tools to act as the cloud
// side of the shadow.
type Publisher struct {
	cfg    Config
	cli    pahoClient
	topics shadow.Topics
	log    logger.Logger
}

// Dial connects a Publisher for the given thing topics.
func Dial(cfg Config, topics shadow.Topics, log logger.Logger) (*Publisher, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	opts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}
	cli := newMQTTClient(opts)
	tok := cli.Connect()
	if !tok.WaitTimeout(cfg.connectTimeout()) {
		cli.Disconnect(0)
		return nil, ErrConnectTimeout
	}
	if err := tok.Error(); err != nil {
		return nil, fmt.Errorf("connect %s: %w", cfg.Broker, err)
	}
	return &Publisher{cfg: cfg, cli: cli, topics: topics, log: logger.OrNop(log)}, nil
}

// SendCommand publishes a command to the thing's command topic.
func (p *Publisher) SendCommand(cmd model.Command) error {
	payload, err := shadow.EncodeCommand(cmd)
	if err != nil {
		return err
	}
	return p.publish(p.topics.Command, p.cfg.qos(QoSCommand), payload)
}

// SetDesired writes desired shadow fields to the update topic.
func (p *Publisher) SetDesired(d model.DesiredDelta) error {
	payload, err := shadow.EncodeDesired(d)
	if err != nil {
		return err
	}
	return p.publish(p.topics.Update, p.cfg.qos(QoSUpdate), payload)
}

func (p *Publisher) publish(topic string, qos byte, payload []byte) error {
	if !p.cli.IsConnected() {
		return ErrNotConnected
	}
	tok := p.cli.Publish(topic, qos, false, payload)
	if !tok.WaitTimeout(p.cfg.publishTimeout()) {
		return ErrPublishTimeout
	}
	if err := tok.Error(); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	p.log.Infof("published %d bytes to %s", len(payload), topic)
	return nil
}

// Close disconnects the client.
func (p *Publisher) Close() {
	if p.cli.IsConnected() {
		p.cli.Disconnect(250)
	}
}
