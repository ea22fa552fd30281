package ws

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"
)

func startHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(cancel)
	return hub
}

func joined(hub IHub, userId string) *UserClient {
	c := NewClient(userId, hub, nil)
	hub.RegisterClient(c)
	hub.JoinRoom(c, userId)
	return c
}

func pending(c *UserClient) int {
	return len(c.send)
}

func TestEmitToRoomReachesOnlyMembers(t *testing.T) {
	hub := startHub(t)
	alice1 := joined(hub, "alice")
	alice2 := joined(hub, "alice")
	bob := joined(hub, "bob")

	hub.EmitToRoom("alice", []byte("hi"))

	if pending(alice1) != 1 || pending(alice2) != 1 {
		t.Fatalf("alice connections got %d and %d frames", pending(alice1), pending(alice2))
	}
	if pending(bob) != 0 {
		t.Fatalf("bob received a frame for another room")
	}
	if got := string(<-alice1.send); got != "hi" {
		t.Fatalf("frame = %q", got)
	}
}

func TestJoinRoomRequiresRegistration(t *testing.T) {
	hub := startHub(t)
	c := NewClient("alice", hub, nil)

	hub.JoinRoom(c, "alice")
	if hub.RoomSize("alice") != 0 {
		t.Fatalf("unregistered client joined a room")
	}
}

func TestRoomEmptyFiresWhenLastConnectionLeaves(t *testing.T) {
	hub := startHub(t)
	emptied := make(chan string, 4)
	hub.SetOnRoomEmpty(func(room string) error {
		emptied <- room
		return nil
	})

	first := joined(hub, "alice")
	second := joined(hub, "alice")

	hub.UnregisterClient(first)
	select {
	case room := <-emptied:
		t.Fatalf("room %q reported empty with a connection left", room)
	case <-time.After(50 * time.Millisecond):
	}

	hub.UnregisterClient(second)
	select {
	case room := <-emptied:
		if room != "alice" {
			t.Fatalf("emptied room = %q", room)
		}
	case <-time.After(time.Second):
		t.Fatal("room empty callback not called")
	}

	if hub.ClientCount() != 0 || hub.RoomSize("alice") != 0 {
		t.Fatalf("hub still tracks clients: %d clients, %d in room", hub.ClientCount(), hub.RoomSize("alice"))
	}
	if _, ok := <-second.send; ok {
		t.Fatalf("send buffer left open")
	}
}

// blockingRoomEmpty installs a callback that holds room "alice" until the
// returned release func is called.
func blockingRoomEmpty(t *testing.T, hub IHub) (entered <-chan struct{}, release func()) {
	t.Helper()
	in := make(chan struct{})
	out := make(chan struct{})
	var once sync.Once
	release = func() { once.Do(func() { close(out) }) }
	t.Cleanup(release)

	hub.SetOnRoomEmpty(func(room string) error {
		if room != "alice" {
			return nil
		}
		close(in)
		<-out
		return nil
	})
	return in, release
}

func TestSlowRoomCallbackDoesNotBlockUnregister(t *testing.T) {
	hub := startHub(t)
	entered, _ := blockingRoomEmpty(t, hub)

	hub.UnregisterClient(joined(hub, "alice"))
	select {
	case <-entered:
	case <-time.After(time.Second):
		t.Fatal("room empty callback not called")
	}

	bob := joined(hub, "bob")
	done := make(chan struct{})
	go func() {
		hub.UnregisterClient(bob)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("unregister blocked behind a slow room callback")
	}
}

func TestJoinWaitsForRoomEmptyCallback(t *testing.T) {
	hub := startHub(t)
	entered, release := blockingRoomEmpty(t, hub)

	hub.UnregisterClient(joined(hub, "alice"))
	select {
	case <-entered:
	case <-time.After(time.Second):
		t.Fatal("room empty callback not called")
	}

	next := NewClient("alice", hub, nil)
	hub.RegisterClient(next)
	joinDone := make(chan struct{})
	go func() {
		hub.JoinRoom(next, "alice")
		close(joinDone)
	}()

	select {
	case <-joinDone:
		t.Fatal("join completed while the room was being reported empty")
	case <-time.After(50 * time.Millisecond):
	}

	release()
	select {
	case <-joinDone:
	case <-time.After(time.Second):
		t.Fatal("join never completed")
	}
	if hub.RoomSize("alice") != 1 {
		t.Fatalf("room size = %d, want 1", hub.RoomSize("alice"))
	}
}

func TestUnregisterIsIdempotent(t *testing.T) {
	hub := startHub(t)
	c := joined(hub, "alice")

	hub.UnregisterClient(c)
	hub.UnregisterClient(c)

	hub.SendToClient(c, []byte("late"))
	hub.EmitToRoom("alice", []byte("late"))
}

func TestSlowClientIsDropped(t *testing.T) {
	hub := startHub(t)
	c := joined(hub, "alice")

	for i := 0; i < sendBufferSize+1; i++ {
		hub.EmitToRoom("alice", []byte("x"))
	}

	deadline := time.Now().Add(time.Second)
	for hub.ClientCount() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("slow client was not dropped")
		}
		time.Sleep(5 * time.Millisecond)
	}
	_ = c
}

func TestRunStopClosesClients(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	c := joined(hub, "alice")

	cancel()
	<-hub.done

	if _, ok := <-c.send; ok {
		t.Fatalf("send buffer left open after shutdown")
	}
	// Must not block once the hub has stopped.
	hub.UnregisterClient(c)
}

func TestRedisHubSkipsOwnMessages(t *testing.T) {
	hub := NewRedisHub("127.0.0.1:0", "server-1")
	c := NewClient("alice", hub, nil)
	hub.RegisterClient(c)
	hub.Hub.JoinRoom(c, "alice")

	own, _ := json.Marshal(RedisMessage{FromServerID: "server-1", Room: "alice", Payload: []byte("own")})
	hub.handleRedisMessage(string(own))
	if pending(c) != 0 {
		t.Fatalf("own message delivered twice")
	}

	foreign, _ := json.Marshal(RedisMessage{FromServerID: "server-2", Room: "alice", Payload: []byte("relayed")})
	hub.handleRedisMessage(string(foreign))
	if pending(c) != 1 {
		t.Fatalf("relayed message not delivered")
	}
	if got := string(<-c.send); got != "relayed" {
		t.Fatalf("frame = %q", got)
	}

	hub.handleRedisMessage("not json")
	if pending(c) != 0 {
		t.Fatalf("malformed message delivered")
	}
}

func TestPartitionMembersSplitsDeadServers(t *testing.T) {
	live, stale := partitionMembers([]string{"s1", "s2", "s3"}, []bool{true, false, true})
	if len(live) != 2 || live[0] != "s1" || live[1] != "s3" {
		t.Fatalf("live = %v", live)
	}
	if len(stale) != 1 || stale[0] != "s2" {
		t.Fatalf("stale = %v", stale)
	}

	live, stale = partitionMembers(nil, nil)
	if len(live) != 0 || len(stale) != 0 {
		t.Fatalf("empty set gave live=%v stale=%v", live, stale)
	}
}

func TestLeavePresenceWithoutRedisReportsEmpty(t *testing.T) {
	hub := NewRedisHub("127.0.0.1:0", "server-1")
	t.Cleanup(func() { hub.redisClient.Close() })

	if !hub.leavePresence("alice") {
		t.Fatalf("unreachable redis kept the room alive")
	}
}
