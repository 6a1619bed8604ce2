/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package eventbus fans guide events out over NATS.
package eventbus

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/friendsincode/slotguide/internal/events"
)

// NATSBus publishes to NATS and delivers to local subscribers. Without a
// connection it behaves like an in-process events.Bus.
type NATSBus struct {
	cfg    NATSConfig
	logger zerolog.Logger
	local  *events.Bus
	conn   *nats.Conn
	nodeID string

	mu   sync.Mutex
	subs map[events.EventType]*nats.Subscription
}

// NATSConfig contains NATS connection configuration.
type NATSConfig struct {
	URL           string
	Name          string
	SubjectPrefix string
	MaxReconnects int
	ReconnectWait time.Duration
	Timeout       time.Duration
}

// DefaultNATSConfig returns default NATS configuration.
func DefaultNATSConfig() NATSConfig {
	return NATSConfig{
		URL:           nats.DefaultURL,
		Name:          "slotguide",
		SubjectPrefix: "slotguide.events",
		MaxReconnects: -1, // Unlimited
		ReconnectWait: 2 * time.Second,
		Timeout:       5 * time.Second,
	}
}

// NewNATSBus connects to NATS. A failed connection is logged and the bus
// stays local; the error is only returned for an invalid configuration.
func NewNATSBus(cfg NATSConfig, logger zerolog.Logger) (*NATSBus, error) {
	if cfg.SubjectPrefix == "" {
		return nil, fmt.Errorf("nats subject prefix is required")
	}
	nb := &NATSBus{
		cfg:    cfg,
		logger: logger.With().Str("component", "eventbus").Logger(),
		local:  events.NewBus(),
		nodeID: generateNodeID(),
		subs:   make(map[events.EventType]*nats.Subscription),
	}
	if cfg.URL == "" {
		nb.logger.Debug().Msg("NATS disabled, using in-process event bus")
		return nb, nil
	}

	conn, err := nats.Connect(cfg.URL,
		nats.Name(cfg.Name),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.Timeout(cfg.Timeout),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			nb.logger.Warn().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			nb.logger.Info().Str("url", c.ConnectedUrl()).Msg("NATS reconnected")
		}),
	)
	if err != nil {
		nb.logger.Warn().Err(err).Str("url", cfg.URL).Msg("NATS connection failed, using in-process event bus")
		return nb, nil
	}
	nb.conn = conn
	nb.logger.Info().Str("url", conn.ConnectedUrl()).Str("node_id", nb.nodeID).Msg("NATS event bus initialized")
	return nb, nil
}

// Connected reports whether events leave the process.
func (nb *NATSBus) Connected() bool {
	return nb.conn != nil && nb.conn.IsConnected()
}

// Subject returns the NATS subject for an event type.
func (nb *NATSBus) Subject(eventType events.EventType) string {
	return nb.cfg.SubjectPrefix + "." + string(eventType)
}

// Subscribe registers a local subscriber. With a connection, events that
// other nodes publish on the same subject are delivered too.
func (nb *NATSBus) Subscribe(eventType events.EventType) events.Subscriber {
	sub := nb.local.Subscribe(eventType)
	if nb.conn == nil {
		return sub
	}

	nb.mu.Lock()
	defer nb.mu.Unlock()
	if _, ok := nb.subs[eventType]; ok {
		return sub
	}
	ns, err := nb.conn.Subscribe(nb.Subject(eventType), func(m *nats.Msg) {
		msg, err := unmarshalNATSMessage(m.Data)
		if err != nil {
			nb.logger.Debug().Err(err).Str("subject", m.Subject).Msg("dropping malformed event")
			return
		}
		if msg.NodeID == nb.nodeID {
			return
		}
		nb.local.Publish(msg.EventType, msg.Payload)
	})
	if err != nil {
		nb.logger.Warn().Err(err).Str("event", string(eventType)).Msg("NATS subscribe failed")
		return sub
	}
	nb.subs[eventType] = ns
	return sub
}

// Publish delivers payload locally and, when connected, to NATS.
func (nb *NATSBus) Publish(eventType events.EventType, payload events.Payload) {
	nb.local.Publish(eventType, payload)
	if nb.conn == nil {
		return
	}

	data, err := marshalNATSMessage(eventType, payload, nb.nodeID)
	if err != nil {
		nb.logger.Warn().Err(err).Str("event", string(eventType)).Msg("encode event failed")
		return
	}
	if err := nb.conn.Publish(nb.Subject(eventType), data); err != nil {
		nb.logger.Warn().Err(err).Str("event", string(eventType)).Msg("NATS publish failed")
	}
}

// Unsubscribe removes a local subscriber.
func (nb *NATSBus) Unsubscribe(eventType events.EventType, sub events.Subscriber) {
	nb.local.Unsubscribe(eventType, sub)
}

// Close drains the NATS connection.
func (nb *NATSBus) Close() error {
	if nb.conn == nil {
		return nil
	}
	if err := nb.conn.Drain(); err != nil {
		nb.conn.Close()
		return err
	}
	return nil
}

// natsMessage represents a message published to NATS.
type natsMessage struct {
	EventType events.EventType `json:"event_type"`
	Payload   events.Payload   `json:"payload"`
	Timestamp time.Time        `json:"timestamp"`
	NodeID    string           `json:"node_id"`
	MessageID string           `json:"message_id"`
}

func marshalNATSMessage(eventType events.EventType, payload events.Payload, nodeID string) ([]byte, error) {
	return json.Marshal(natsMessage{
		EventType: eventType,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
		NodeID:    nodeID,
		MessageID: uuid.NewString(),
	})
}

func unmarshalNATSMessage(data []byte) (*natsMessage, error) {
	var msg natsMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("unmarshal nats message: %w", err)
	}
	if msg.EventType == "" {
		return nil, fmt.Errorf("unmarshal nats message: missing event type")
	}
	return &msg, nil
}

func generateNodeID() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "node"
	}
	return strings.ReplaceAll(host, ".", "-") + "-" + uuid.NewString()[:8]
}
