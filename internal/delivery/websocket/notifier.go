package websocket

import (
	"matchmaker/infrastructure/ws"

	log "github.com/sirupsen/logrus"
)

// RoomNotifier emits usecase events into the target user's room.
type RoomNotifier struct {
	hub ws.IHub
}

func NewRoomNotifier(hub ws.IHub) *RoomNotifier {
	return &RoomNotifier{hub: hub}
}

func (n *RoomNotifier) Notify(userId, event string, data any) {
	payload, err := Encode(event, data)
	if err != nil {
		log.WithError(err).WithField("event", event).Error("encode event")
		return
	}
	n.hub.EmitToRoom(userId, payload)
}
