package ws

import "context"

// IHub routes frames to rooms. A room is keyed by a user id and holds every
// connection of that user that joined it.
type IHub interface {
	Run(ctx context.Context)
	RegisterClient(client *UserClient)
	UnregisterClient(client *UserClient)
	JoinRoom(client *UserClient, room string)
	EmitToRoom(room string, message []byte)
	SendToClient(client *UserClient, message []byte)
	ClientCount() int
	RoomSize(room string) int
	SetOnRoomEmpty(callback func(room string) error)
}
