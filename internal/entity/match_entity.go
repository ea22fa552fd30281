package entity

import (
	"sort"
	"time"
)

type Match struct {
	Id        string    `bson:"_id" json:"id"`
	Users     []string  `bson:"users" json:"users"`
	PairKey   string    `bson:"pairKey" json:"-"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

// PairKey returns a key identifying the unordered pair {a, b}.
func PairKey(a, b string) string {
	pair := SortedPair(a, b)
	return pair[0] + ":" + pair[1]
}

func SortedPair(a, b string) []string {
	pair := []string{a, b}
	sort.Strings(pair)
	return pair
}

// Other returns the participant that is not userId.
func (m Match) Other(userId string) string {
	for _, id := range m.Users {
		if id != userId {
			return id
		}
	}
	return ""
}

type LikeResult struct {
	Mutual bool `json:"mutual"`
}
