package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Message struct {
	Id         string    `bson:"_id" json:"id"`
	SenderId   string    `bson:"senderId" json:"senderId"`
	ReceiverId string    `bson:"receiverId" json:"receiverId"`
	Message    string    `bson:"message" json:"message"`
	Timestamp  time.Time `bson:"timestamp" json:"timestamp"`

	// Seq orders messages that share a timestamp.
	Seq primitive.ObjectID `bson:"seq" json:"-"`
}

// ConversationFilter selects messages exchanged between UserA and UserB in
// either direction.
type ConversationFilter struct {
	UserA  string
	UserB  string
	Limit  int
	Before time.Time
}
