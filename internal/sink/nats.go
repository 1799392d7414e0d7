package sink

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/nats-io/nats.go"
)

// NATS publishes each channel's frames as float32 little-endian
// payloads on subject "<prefix>.<channel>", one message per frame.
// Subscribers reassemble the stream in publish order.
type NATS struct {
	nc      *nats.Conn
	prefix  string
	ownConn bool
}

// NewNATS publishes frames over an existing connection.
func NewNATS(nc *nats.Conn, prefix string) *NATS {
	return &NATS{nc: nc, prefix: prefix}
}

// DialNATS connects to url and publishes under prefix. The connection
// is closed by Close.
func DialNATS(url, prefix string) (*NATS, error) {
	nc, err := nats.Connect(url,
		nats.Name("stimpattern-sink"),
		nats.Timeout(nats.DefaultTimeout),
		nats.ReconnectWait(nats.DefaultReconnectWait),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return &NATS{nc: nc, prefix: prefix, ownConn: true}, nil
}

func (n *NATS) Write(channel string, frame []float64) error {
	buf := make([]byte, 4*len(frame))
	for i, v := range frame {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(float32(v)))
	}
	if err := n.nc.Publish(n.prefix+"."+channel, buf); err != nil {
		return fmt.Errorf("publish %s: %w", channel, err)
	}
	return nil
}

func (n *NATS) Close() error {
	if err := n.nc.Flush(); err != nil {
		return err
	}
	if n.ownConn {
		n.nc.Close()
	}
	return nil
}
