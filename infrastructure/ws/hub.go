package ws

import (
	"context"
	"hash/fnv"
	"sync"

	log "github.com/sirupsen/logrus"
)

const roomLockStripes = 64

type Hub struct {
	clients    map[*UserClient]struct{}
	rooms      map[string]map[*UserClient]struct{}
	unregister chan *UserClient
	done       chan struct{}
	mu         sync.RWMutex

	// roomLocks serialize JoinRoom with the empty check and callback of the
	// same room, so a join never lands between the two.
	roomLocks [roomLockStripes]sync.Mutex
	emptying  sync.WaitGroup

	onRoomEmpty func(room string) error
	// leaveRoom runs before onRoomEmpty when the last local member leaves;
	// returning false keeps the room alive elsewhere.
	leaveRoom func(room string) bool
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*UserClient]struct{}),
		rooms:      make(map[string]map[*UserClient]struct{}),
		unregister: make(chan *UserClient),
		done:       make(chan struct{}),
	}
}

// Run owns unregistration. Room-empty callbacks run on their own
// goroutines; Run waits for them before returning.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	defer h.emptying.Wait()

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case client := <-h.unregister:
			for _, room := range h.remove(client) {
				h.emptying.Add(1)
				go func(room string) {
					defer h.emptying.Done()
					h.roomEmptied(room)
				}(room)
			}
		}
	}
}

func (h *Hub) RegisterClient(client *UserClient) {
	h.mu.Lock()
	h.clients[client] = struct{}{}
	h.mu.Unlock()

	log.WithField("userId", client.UserId).Debug("client connected")
}

func (h *Hub) UnregisterClient(client *UserClient) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) JoinRoom(client *UserClient, room string) {
	lock := h.roomLock(room)
	lock.Lock()
	defer lock.Unlock()

	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client]; !ok {
		return
	}
	members, ok := h.rooms[room]
	if !ok {
		members = make(map[*UserClient]struct{})
		h.rooms[room] = members
	}
	members[client] = struct{}{}
	client.rooms[room] = struct{}{}
}

// EmitToRoom queues message on every local connection in room. Connections
// whose buffer is full are dropped.
func (h *Hub) EmitToRoom(room string, message []byte) {
	h.emitLocal(room, message)
}

func (h *Hub) emitLocal(room string, message []byte) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for client := range h.rooms[room] {
		select {
		case client.send <- message:
			delivered++
		default:
			log.WithFields(log.Fields{"userId": client.UserId, "room": room}).Warn("send buffer full, dropping client")
			go h.UnregisterClient(client)
		}
	}
	return delivered
}

func (h *Hub) SendToClient(client *UserClient, message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if _, ok := h.clients[client]; !ok {
		return
	}
	select {
	case client.send <- message:
	default:
		log.WithField("userId", client.UserId).Warn("send buffer full, dropping client")
		go h.UnregisterClient(client)
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

func (h *Hub) SetOnRoomEmpty(callback func(room string) error) {
	h.mu.Lock()
	h.onRoomEmpty = callback
	h.mu.Unlock()
}

// remove detaches client and returns the rooms it left empty.
func (h *Hub) remove(client *UserClient) []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client]; !ok {
		return nil
	}
	delete(h.clients, client)
	close(client.send)

	var emptied []string
	for room := range client.rooms {
		members := h.rooms[room]
		delete(members, client)
		if len(members) == 0 {
			delete(h.rooms, room)
			emptied = append(emptied, room)
		}
	}
	client.rooms = make(map[string]struct{})

	log.WithField("userId", client.UserId).Debug("client disconnected")
	return emptied
}

func (h *Hub) roomLock(room string) *sync.Mutex {
	f := fnv.New32a()
	f.Write([]byte(room))
	return &h.roomLocks[f.Sum32()%roomLockStripes]
}

func (h *Hub) roomEmptied(room string) {
	lock := h.roomLock(room)
	lock.Lock()
	defer lock.Unlock()

	// A new connection may have joined since remove released the hub lock.
	if h.RoomSize(room) > 0 {
		return
	}
	if h.leaveRoom != nil && !h.leaveRoom(room) {
		return
	}

	h.mu.RLock()
	callback := h.onRoomEmpty
	h.mu.RUnlock()
	if callback == nil {
		return
	}
	if err := callback(room); err != nil {
		log.WithError(err).WithField("room", room).Error("room empty callback failed")
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		close(client.send)
	}
	h.clients = make(map[*UserClient]struct{})
	h.rooms = make(map[string]map[*UserClient]struct{})
}
