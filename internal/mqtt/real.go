package mqtt

import (
	"fmt"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"github.com/sweeney/cooling-monitor/internal/logic"
	"github.com/sweeney/cooling-monitor/internal/status"
)

// bufferSize bounds events held while the broker is unreachable.
const bufferSize = 100

// RealPublisher publishes to an actual MQTT broker.
// Events and system messages published while disconnected are buffered and
// replayed on reconnect; telemetry is not.
type RealPublisher struct {
	client paho.Client
	logger *zap.Logger

	mu     sync.Mutex
	buffer *ringBuffer
}

// NewRealPublisher creates a publisher for the given broker. The initial
// connection is attempted for up to 10 seconds; after that the client keeps
// retrying in the background and the daemon runs without MQTT meanwhile.
func NewRealPublisher(broker, clientID string, logger *zap.Logger) *RealPublisher {
	p := &RealPublisher{
		logger: logger.With(zap.String("broker", broker)),
		buffer: newRingBuffer(bufferSize),
	}

	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5*time.Second).
		SetWill(TopicSystem, string(willPayload()), 1, true).
		SetOnConnectHandler(func(paho.Client) { p.onConnect() }).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			p.logger.Warn("mqtt connection lost", zap.Error(err))
		})

	p.client = paho.NewClient(opts)
	token := p.client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		p.logger.Warn("mqtt connect timeout, retrying in background")
	} else if err := token.Error(); err != nil {
		p.logger.Warn("mqtt connect failed, retrying in background", zap.Error(err))
	}
	return p
}

// IsConnected reports whether the client currently has an open connection.
func (p *RealPublisher) IsConnected() bool {
	return p.client.IsConnectionOpen()
}

// PublishTelemetry sends the snapshot, QoS 0, retained.
func (p *RealPublisher) PublishTelemetry(snap status.Snapshot) error {
	if !p.IsConnected() {
		return ErrNotConnected
	}
	return p.publish(TopicTelemetry, 0, true, status.FormatTelemetry(snap))
}

// PublishEvent sends an actuator transition, QoS 1.
func (p *RealPublisher) PublishEvent(event logic.Event) error {
	payload, err := FormatEventPayload(event)
	if err != nil {
		return fmt.Errorf("format event payload: %w", err)
	}
	return p.publishOrBuffer(bufferedMsg{topic: TopicEvents, payload: payload, qos: 1})
}

// PublishSystem sends a system lifecycle event, QoS 1, retained so late
// subscribers see whether the daemon is up.
func (p *RealPublisher) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}
	return p.publishOrBuffer(bufferedMsg{topic: TopicSystem, payload: payload, qos: 1, retained: true})
}

// Close disconnects from the broker.
func (p *RealPublisher) Close() error {
	p.client.Disconnect(1000) // 1 second timeout
	return nil
}

func (p *RealPublisher) publishOrBuffer(msg bufferedMsg) error {
	if !p.IsConnected() {
		p.mu.Lock()
		dropped := p.buffer.push(msg)
		p.mu.Unlock()
		if dropped {
			p.logger.Warn("mqtt buffer full, dropped oldest message", zap.Int("capacity", bufferSize))
		}
		return nil
	}
	return p.publish(msg.topic, msg.qos, msg.retained, msg.payload)
}

func (p *RealPublisher) publish(topic string, qos byte, retained bool, payload []byte) error {
	token := p.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("publish %s: timeout", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

// onConnect replays buffered messages. It runs on paho's goroutine, so
// publishes are fire-and-forget.
func (p *RealPublisher) onConnect() {
	p.mu.Lock()
	msgs := p.buffer.drainAll()
	p.mu.Unlock()

	p.logger.Info("mqtt connected", zap.Int("replaying", len(msgs)))
	for _, m := range msgs {
		p.client.Publish(m.topic, m.qos, m.retained, m.payload)
	}
}
