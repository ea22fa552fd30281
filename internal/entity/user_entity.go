package entity

import "time"

const (
	GenderMale   = "male"
	GenderFemale = "female"
	GenderOther  = "other"
)

type User struct {
	Id            string    `bson:"_id" json:"id"`
	Name          string    `bson:"name" json:"name"`
	Email         string    `bson:"email" json:"email"`
	Password      string    `bson:"password" json:"-"` // bcrypt hash, never serialized
	Gender        string    `bson:"gender" json:"gender"`
	Description   string    `bson:"description" json:"description"`
	ProfileImages []string  `bson:"profileImages" json:"profileImages"`
	TurnOns       []string  `bson:"turnOns" json:"turnOns"`
	LookingFor    []string  `bson:"lookingFor" json:"lookingFor"`
	Crushes       []string  `bson:"crushes" json:"crushes"`
	ReceivedLikes []string  `bson:"receivedLikes" json:"receivedLikes"`
	Matches       []string  `bson:"matches" json:"matches"`
	IsOnline      bool      `bson:"isOnline" json:"isOnline"`
	CreatedAt     time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time `bson:"updatedAt" json:"updatedAt"`
}

// HasLiked reports whether u has liked userId.
func (u User) HasLiked(userId string) bool {
	return contains(u.Crushes, userId)
}

func (u User) IsLikedBy(userId string) bool {
	return contains(u.ReceivedLikes, userId)
}

func (u User) IsMatchedWith(userId string) bool {
	return contains(u.Matches, userId)
}

// Profile list fields that support add/remove with set semantics.
const (
	ListTurnOns       = "turnOns"
	ListLookingFor    = "lookingFor"
	ListProfileImages = "profileImages"
)

type UserIndexFilter struct {
	Ids        []string
	ExcludeIds []string
	Gender     string
}

func IsValidGender(gender string) bool {
	switch gender {
	case GenderMale, GenderFemale, GenderOther:
		return true
	}
	return false
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
