// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package xgo

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"
)

// =============================================================================
// ERRORS
// =============================================================================

// ErrNotConnected is returned by operations that need a live bridge.
var ErrNotConnected = errors.New("xgo bridge not connected")

// ErrAlreadyConnected is returned by Connect when a bridge is open.
var ErrAlreadyConnected = errors.New("xgo bridge already connected")

// =============================================================================
// BRIDGE
// =============================================================================

// DefaultDialTimeout bounds a connection attempt to the device.
const DefaultDialTimeout = 5 * time.Second

// Status describes the bridge connection.
type Status struct {
	Connected bool      `json:"connected"`
	Address   string    `json:"address,omitempty"`
	Since     time.Time `json:"since,omitempty"`
}

// Bridge is a TCP connection to the XGO companion device. Only the
// control channel lives here; the audio path is handled elsewhere.
type Bridge struct {
	mu          sync.Mutex
	conn        net.Conn
	addr        string
	connectedAt time.Time

	// DialTimeout bounds Connect. Zero means DefaultDialTimeout.
	DialTimeout time.Duration
}

// NewBridge creates a disconnected bridge.
func NewBridge() *Bridge {
	return &Bridge{DialTimeout: DefaultDialTimeout}
}

// Connect dials the device at addr (host:port).
func (b *Bridge) Connect(ctx context.Context, addr string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.conn != nil {
		return ErrAlreadyConnected
	}
	if addr == "" {
		return errors.New("xgo address is empty")
	}

	timeout := b.DialTimeout
	if timeout <= 0 {
		timeout = DefaultDialTimeout
	}

	dialer := net.Dialer{Timeout: timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("connect xgo at %s: %w", addr, err)
	}

	b.conn = conn
	b.addr = addr
	b.connectedAt = time.Now()
	return nil
}

// Disconnect closes the bridge. Disconnecting an idle bridge is a
// no-op.
func (b *Bridge) Disconnect() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.conn == nil {
		return nil
	}

	err := b.conn.Close()
	b.conn = nil
	b.addr = ""
	b.connectedAt = time.Time{}
	return err
}

// Status reports the current connection state.
func (b *Bridge) Status() Status {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.conn == nil {
		return Status{}
	}
	return Status{
		Connected: true,
		Address:   b.addr,
		Since:     b.connectedAt,
	}
}

// Send writes a raw control line to the device.
func (b *Bridge) Send(line string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.conn == nil {
		return ErrNotConnected
	}
	_, err := b.conn.Write([]byte(line + "\n"))
	return err
}
