package zeromq

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/pebbe/zmq4"

	"github.com/MahiRanka/dimos-unitree/pkg/config"
	customlog "github.com/MahiRanka/dimos-unitree/pkg/log"
	"github.com/MahiRanka/dimos-unitree/pkg/teleop"
	"github.com/MahiRanka/dimos-unitree/pkg/wire"
)

// ErrPublisherClosed is returned when publishing after Close.
var ErrPublisherClosed = errors.New("command publisher is closed")

// CommandPublisher publishes encoded velocity command frames to the
// robot bridge over a ZeroMQ PUB socket. Each frame is sent as two
// parts: the topic, then the FlatBuffers payload.
type CommandPublisher struct {
	ctx     *zmq4.Context
	socket  *zmq4.Socket
	topic   string
	logger  customlog.Logger
	running bool
	mu      sync.Mutex
}

// NewCommandPublisher creates a publisher bound to the configured address.
func NewCommandPublisher(cfg config.ZeroMQConfig, logger customlog.Logger) (*CommandPublisher, error) {
	ctx, err := zmq4.NewContext()
	if err != nil {
		return nil, fmt.Errorf("failed to create ZMQ context: %w", err)
	}

	socket, err := ctx.NewSocket(zmq4.PUB)
	if err != nil {
		ctx.Term()
		return nil, fmt.Errorf("failed to create PUB socket: %w", err)
	}

	if err := socket.Bind(cfg.PublishBindAddress); err != nil {
		socket.Close()
		ctx.Term()
		return nil, fmt.Errorf("failed to bind to %s: %w", cfg.PublishBindAddress, err)
	}

	if err := socket.SetLinger(0); err != nil {
		socket.Close()
		ctx.Term()
		return nil, fmt.Errorf("failed to set linger option: %w", err)
	}

	logger.Infof("CommandPublisher initialized on %s (topic: %s)", cfg.PublishBindAddress, cfg.CommandTopic)

	return &CommandPublisher{
		ctx:     ctx,
		socket:  socket,
		topic:   cfg.CommandTopic,
		logger:  logger,
		running: true,
	}, nil
}

// Publish encodes and sends one command frame. It implements the
// service's CommandSink.
func (p *CommandPublisher) Publish(cmd teleop.VelocityCommand, source, label string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return ErrPublisherClosed
	}

	payload := wire.EncodeCommandFrame(wire.CommandFrame{
		Command:     cmd,
		TimestampNs: time.Now().UnixNano(),
		Source:      source,
		Label:       label,
	})

	// Send two messages in sequence (topic first, then payload)
	if _, err := p.socket.Send(p.topic, zmq4.SNDMORE); err != nil {
		return fmt.Errorf("failed to send topic: %w", err)
	}
	if _, err := p.socket.SendBytes(payload, 0); err != nil {
		return fmt.Errorf("failed to send command frame: %w", err)
	}

	return nil
}

// Close cleans up the socket and context.
func (p *CommandPublisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return
	}
	p.running = false

	if p.socket != nil {
		p.socket.Close()
		p.socket = nil
	}
	if p.ctx != nil {
		p.ctx.Term()
		p.ctx = nil
	}

	p.logger.Infof("CommandPublisher closed")
}
