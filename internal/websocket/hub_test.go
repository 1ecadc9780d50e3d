// Farescope - Flight Search and Travel Analytics Backend
// Copyright 2026 Farescope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/farescope/farescope

package websocket

import (
	"context"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(userID string) *Client {
	return &Client{userID: userID, send: make(chan []byte, 8)}
}

func receivedType(t *testing.T, c *Client) string {
	t.Helper()
	select {
	case data := <-c.send:
		var msg Message
		require.NoError(t, json.Unmarshal(data, &msg))
		return msg.Type
	default:
		t.Fatal("no message queued")
		return ""
	}
}

func TestOfflineAfterAllConnectionsClose(t *testing.T) {
	h := NewHub()

	clients := []*Client{testClient("u1"), testClient("u1"), testClient("u1")}
	for _, c := range clients {
		h.add(c)
	}
	assert.True(t, h.IsOnline("u1"))
	assert.Equal(t, 1, h.OnlineUserCount())
	assert.Equal(t, 3, h.TotalConnectionCount())

	for _, c := range clients {
		h.remove(c)
	}
	assert.False(t, h.IsOnline("u1"))
	assert.Zero(t, h.OnlineUserCount())
	assert.Zero(t, h.TotalConnectionCount())
}

func TestSendToUnknownUser(t *testing.T) {
	h := NewHub()
	assert.False(t, h.SendToUser("ghost", Message{Type: "notification"}))
}

func TestSendToUserReachesEveryConnection(t *testing.T) {
	h := NewHub()
	c1, c2 := testClient("u1"), testClient("u1")
	h.add(c1)
	h.add(c2)

	require.True(t, h.SendToUser("u1", Message{Type: "notification", Data: "hi"}))
	assert.Equal(t, "notification", receivedType(t, c1))
	assert.Equal(t, "notification", receivedType(t, c2))
}

func TestBroadcastTwoConnectionsSameUser(t *testing.T) {
	h := NewHub()
	c1, c2 := testClient("u1"), testClient("u1")
	h.add(c1)
	h.add(c2)

	delivered := h.Broadcast(Message{Type: "announce"})
	assert.Equal(t, 2, delivered)
	assert.Equal(t, 2, h.TotalConnectionCount())
	assert.Equal(t, "announce", receivedType(t, c1))
	assert.Equal(t, "announce", receivedType(t, c2))
}

func TestSendToUsersTalliesOnlineAndOffline(t *testing.T) {
	h := NewHub()
	h.add(testClient("u1"))

	result := h.SendToUsers([]string{"u1", "u2", "u3"}, Message{Type: "notification"})
	assert.Equal(t, 1, result.Sent)
	assert.Equal(t, 2, result.Offline)
}

func TestFullBufferDropsWithoutEviction(t *testing.T) {
	h := NewHub()
	c := &Client{userID: "u1", send: make(chan []byte)} // no reader, no buffer
	h.add(c)

	assert.False(t, h.SendToUser("u1", Message{Type: "notification"}))
	// Dropped delivery must not evict the connection.
	assert.True(t, h.IsOnline("u1"))
}

func TestUnregisterUnknownClientIsNoop(t *testing.T) {
	h := NewHub()
	h.add(testClient("u1"))
	h.remove(testClient("u2"))
	h.remove(testClient("u1")) // distinct pointer, not registered

	assert.True(t, h.IsOnline("u1"))
	assert.Equal(t, 1, h.TotalConnectionCount())
}

func TestRunWithContextLifecycle(t *testing.T) {
	h := NewHub()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- h.RunWithContext(ctx) }()

	c := testClient("u1")
	h.Register <- c
	require.Eventually(t, func() bool { return h.IsOnline("u1") }, time.Second, 5*time.Millisecond)

	h.Unregister <- c
	require.Eventually(t, func() bool { return !h.IsOnline("u1") }, time.Second, 5*time.Millisecond)

	c2 := testClient("u2")
	h.Register <- c2
	require.Eventually(t, func() bool { return h.IsOnline("u2") }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("run loop did not stop")
	}
	assert.Zero(t, h.TotalConnectionCount())
}

func TestSendAfterCloseDoesNotPanic(t *testing.T) {
	h := NewHub()
	c := testClient("u1")
	h.add(c)
	c.closeSend()

	// The closed channel makes enqueue fail; the user entry is still
	// present until the unregister path runs.
	assert.False(t, h.SendToUser("u1", Message{Type: "notification"}))
}
