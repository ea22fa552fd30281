package entity

// Real-time event names exchanged over the chat socket.
const (
	EventJoinRoom       = "joinRoom"
	EventRoomJoined     = "roomJoined"
	EventSendMessage    = "sendMessage"
	EventMessageSent    = "messageSent"
	EventReceiveMessage = "receiveMessage"
	EventNewMatch       = "newMatch"
	EventError          = "error"
)

type MatchNotification struct {
	MatchId string `json:"matchId"`
	UserId  string `json:"userId"`
}
