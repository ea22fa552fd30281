package websocket

import "encoding/json"

type outgoingEnvelope struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

type RoomJoinedResponse struct {
	UserId string `json:"userId"`
}

type ErrorResponse struct {
	Message string `json:"message"`
}

func Encode(event string, data any) ([]byte, error) {
	return json.Marshal(outgoingEnvelope{Event: event, Data: data})
}
