// Package events publishes attendance decisions on NATS so dashboards can
// follow the door in real time.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/rollcall-dev/rollcall/internal/rollcall/types"
)

// DefaultSubjectPrefix yields subjects like rollcall.attendance.checkin.
const DefaultSubjectPrefix = "rollcall.attendance"

type conn interface {
	Publish(subject string, data []byte) error
	Drain() error
	Close()
}

type NATSPublisher struct {
	nc     conn
	prefix string
}

type NATSConfig struct {
	URL           string
	SubjectPrefix string
	Name          string
}

// NewNATSPublisher connects to cfg.URL.  The connection reconnects on its
// own; publishes made while disconnected are buffered by the client.
func NewNATSPublisher(cfg NATSConfig, logger *log.Logger) (*NATSPublisher, error) {
	name := cfg.Name
	if name == "" {
		name = "rollcall-server"
	}
	nc, err := nats.Connect(cfg.URL,
		nats.Name(name),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Printf("nats disconnected: %v", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Printf("nats reconnected url=%s", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS %s: %w", cfg.URL, err)
	}
	return newPublisher(nc, cfg.SubjectPrefix), nil
}

func newPublisher(nc conn, prefix string) *NATSPublisher {
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}
	return &NATSPublisher{nc: nc, prefix: prefix}
}

// Subject returns the subject an event with the given action goes to.
func (p *NATSPublisher) Subject(action string) string {
	return p.prefix + "." + action
}

func (p *NATSPublisher) PublishAttendance(_ context.Context, ev types.AttendanceEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return p.nc.Publish(p.Subject(ev.Action), data)
}

// Close flushes pending messages and closes the connection.
func (p *NATSPublisher) Close() {
	_ = p.nc.Drain()
	p.nc.Close()
}
