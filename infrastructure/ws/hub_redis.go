package ws

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
)

const (
	roomChannelPrefix = "rooms:"
	presencePrefix    = "presence:"
	serverPrefix      = "server:"
	redisTimeout      = 2 * time.Second

	// A server whose heartbeat key has expired no longer counts towards
	// any presence set.
	heartbeatInterval = 10 * time.Second
	heartbeatTTL      = 3 * heartbeatInterval
)

// RedisHub relays room emits between server instances over Redis pub/sub.
// Local delivery always happens first; Redis only carries the copy for
// connections held by other instances.
type RedisHub struct {
	*Hub

	redisClient *redis.Client
	serverID    string
	breaker     *gobreaker.CircuitBreaker
}

type RedisMessage struct {
	FromServerID string `json:"fromServerId"`
	Room         string `json:"room"`
	Payload      []byte `json:"payload"`
}

func NewRedisHub(redisAddr string, serverID string) *RedisHub {
	rdb := redis.NewClient(&redis.Options{
		Addr: redisAddr,
	})

	h := &RedisHub{
		Hub:         NewHub(),
		redisClient: rdb,
		serverID:    serverID,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "redis-publish",
			MaxRequests: 1,
			Timeout:     10 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				log.WithFields(log.Fields{"breaker": name, "from": from.String(), "to": to.String()}).Warn("circuit breaker state changed")
			},
		}),
	}
	h.Hub.leaveRoom = h.leavePresence
	return h
}

func (h *RedisHub) Run(ctx context.Context) {
	pubsub := h.redisClient.PSubscribe(ctx, roomChannelPrefix+"*")
	go h.subscribeRedis(pubsub)

	h.beat()
	go h.heartbeat(ctx)

	log.WithField("serverId", h.serverID).Info("redis hub started")
	h.Hub.Run(ctx)

	pubsub.Close()
	h.stopHeartbeat()
	h.redisClient.Close()
}

func (h *RedisHub) heartbeat(ctx context.Context) {
	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.beat()
		}
	}
}

func (h *RedisHub) beat() {
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()
	if err := h.redisClient.Set(ctx, serverPrefix+h.serverID, time.Now().Unix(), heartbeatTTL).Err(); err != nil {
		log.WithError(err).WithField("serverId", h.serverID).Warn("heartbeat failed")
	}
}

func (h *RedisHub) stopHeartbeat() {
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()
	if err := h.redisClient.Del(ctx, serverPrefix+h.serverID).Err(); err != nil {
		log.WithError(err).WithField("serverId", h.serverID).Warn("clear heartbeat failed")
	}
}

func (h *RedisHub) subscribeRedis(pubsub *redis.PubSub) {
	for msg := range pubsub.Channel() {
		h.handleRedisMessage(msg.Payload)
	}
}

func (h *RedisHub) handleRedisMessage(payload string) {
	var redisMsg RedisMessage
	if err := json.Unmarshal([]byte(payload), &redisMsg); err != nil {
		log.WithError(err).Warn("malformed redis room message")
		return
	}
	// Already delivered locally before publishing.
	if redisMsg.FromServerID == h.serverID {
		return
	}
	h.emitLocal(redisMsg.Room, redisMsg.Payload)
}

func (h *RedisHub) JoinRoom(client *UserClient, room string) {
	h.Hub.JoinRoom(client, room)

	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()
	if err := h.redisClient.SAdd(ctx, presencePrefix+room, h.serverID).Err(); err != nil {
		log.WithError(err).WithField("room", room).Warn("record presence failed")
	}
}

func (h *RedisHub) EmitToRoom(room string, message []byte) {
	h.emitLocal(room, message)
	h.publishToRedis(room, message)
}

func (h *RedisHub) publishToRedis(room string, message []byte) {
	msgBytes, err := json.Marshal(RedisMessage{
		FromServerID: h.serverID,
		Room:         room,
		Payload:      message,
	})
	if err != nil {
		log.WithError(err).Error("marshal redis room message")
		return
	}

	_, err = h.breaker.Execute(func() (interface{}, error) {
		ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
		defer cancel()
		return nil, h.redisClient.Publish(ctx, roomChannelPrefix+room, msgBytes).Err()
	})
	if err != nil {
		log.WithError(err).WithField("room", room).Warn("publish to redis failed")
	}
}

// leavePresence drops this server from the room's presence set and reports
// whether no live instance holds the room any more. Members whose heartbeat
// has expired are pruned from the set.
func (h *RedisHub) leavePresence(room string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()

	key := presencePrefix + room
	if err := h.redisClient.SRem(ctx, key, h.serverID).Err(); err != nil {
		log.WithError(err).WithField("room", room).Warn("clear presence failed")
		return true
	}
	members, err := h.redisClient.SMembers(ctx, key).Result()
	if err != nil {
		log.WithError(err).WithField("room", room).Warn("read presence failed")
		return true
	}
	if len(members) == 0 {
		return true
	}

	pipe := h.redisClient.Pipeline()
	checks := make([]*redis.IntCmd, len(members))
	for i, member := range members {
		checks[i] = pipe.Exists(ctx, serverPrefix+member)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		log.WithError(err).WithField("room", room).Warn("read heartbeats failed")
		return false
	}
	alive := make([]bool, len(checks))
	for i, cmd := range checks {
		alive[i] = cmd.Val() > 0
	}

	live, stale := partitionMembers(members, alive)
	if len(stale) > 0 {
		log.WithFields(log.Fields{"room": room, "servers": stale}).Info("pruning presence of dead servers")
		if err := h.redisClient.SRem(ctx, key, stale...).Err(); err != nil {
			log.WithError(err).WithField("room", room).Warn("prune presence failed")
		}
	}
	return len(live) == 0
}

func partitionMembers(members []string, alive []bool) (live []string, stale []any) {
	for i, member := range members {
		if alive[i] {
			live = append(live, member)
		} else {
			stale = append(stale, member)
		}
	}
	return live, stale
}
