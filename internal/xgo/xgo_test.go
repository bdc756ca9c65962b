// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package xgo

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"
)

func testListener(t *testing.T) net.Listener {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { ln.Close() })
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go func(c net.Conn) {
				buf := make([]byte, 1024)
				for {
					if _, err := c.Read(buf); err != nil {
						c.Close()
						return
					}
				}
			}(conn)
		}
	}()
	return ln
}

func TestConnectAndStatus(t *testing.T) {
	ln := testListener(t)

	b := NewBridge()
	if b.Status().Connected {
		t.Fatal("new bridge reports connected")
	}

	if err := b.Connect(context.Background(), ln.Addr().String()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer b.Disconnect()

	st := b.Status()
	if !st.Connected || st.Address != ln.Addr().String() || st.Since.IsZero() {
		t.Errorf("status = %+v", st)
	}
}

func TestConnectTwice(t *testing.T) {
	ln := testListener(t)

	b := NewBridge()
	if err := b.Connect(context.Background(), ln.Addr().String()); err != nil {
		t.Fatal(err)
	}
	defer b.Disconnect()

	err := b.Connect(context.Background(), ln.Addr().String())
	if !errors.Is(err, ErrAlreadyConnected) {
		t.Errorf("expected ErrAlreadyConnected, got %v", err)
	}
}

func TestConnectRefused(t *testing.T) {
	b := NewBridge()
	b.DialTimeout = time.Second

	err := b.Connect(context.Background(), "127.0.0.1:1")
	if err == nil {
		b.Disconnect()
		t.Fatal("expected connection error")
	}
}

func TestDisconnectIdle(t *testing.T) {
	b := NewBridge()
	if err := b.Disconnect(); err != nil {
		t.Errorf("disconnecting idle bridge errored: %v", err)
	}
}

func TestSendRequiresConnection(t *testing.T) {
	b := NewBridge()
	if err := b.Send("status"); !errors.Is(err, ErrNotConnected) {
		t.Errorf("expected ErrNotConnected, got %v", err)
	}
}

func TestSendAndReconnect(t *testing.T) {
	ln := testListener(t)
	b := NewBridge()

	if err := b.Connect(context.Background(), ln.Addr().String()); err != nil {
		t.Fatal(err)
	}
	if err := b.Send("wave"); err != nil {
		t.Errorf("Send failed: %v", err)
	}
	if err := b.Disconnect(); err != nil {
		t.Fatal(err)
	}
	if b.Status().Connected {
		t.Error("still connected after Disconnect")
	}

	// A fresh connect after disconnect must work.
	if err := b.Connect(context.Background(), ln.Addr().String()); err != nil {
		t.Fatalf("reconnect failed: %v", err)
	}
	b.Disconnect()
}
