package usecase

import (
	"bytes"
	"context"
	"sort"
	"sync"
	"time"

	"matchmaker/internal/entity"
	"matchmaker/internal/repository"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory repositories mirroring the Mongo semantics the usecases rely on.

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]entity.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]entity.User{}}
}

func cloneUser(u entity.User) entity.User {
	u.ProfileImages = append([]string{}, u.ProfileImages...)
	u.TurnOns = append([]string{}, u.TurnOns...)
	u.LookingFor = append([]string{}, u.LookingFor...)
	u.Crushes = append([]string{}, u.Crushes...)
	u.ReceivedLikes = append([]string{}, u.ReceivedLikes...)
	u.Matches = append([]string{}, u.Matches...)
	return u
}

func addToSet(list []string, v string) []string {
	for _, item := range list {
		if item == v {
			return list
		}
	}
	return append(list, v)
}

func pull(list []string, v string) []string {
	out := list[:0:0]
	for _, item := range list {
		if item != v {
			out = append(out, item)
		}
	}
	return out
}

func (r *fakeUserRepo) put(u entity.User) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u.Id == "" {
		u.Id = uuid.New().String()
	}
	r.users[u.Id] = cloneUser(u)
	return u.Id
}

func (r *fakeUserRepo) Get(_ context.Context, userId string) (entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userId]
	if !ok {
		return entity.User{}, repository.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return entity.User{}, repository.ErrUserNotFound
}

func (r *fakeUserRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := r.GetByEmail(ctx, email)
	return err == nil, nil
}

func (r *fakeUserRepo) Index(_ context.Context, filter entity.UserIndexFilter) ([]entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	in := func(list []string, v string) bool {
		for _, item := range list {
			if item == v {
				return true
			}
		}
		return false
	}

	users := []entity.User{}
	for _, u := range r.users {
		if filter.Ids != nil && !in(filter.Ids, u.Id) {
			continue
		}
		if in(filter.ExcludeIds, u.Id) {
			continue
		}
		if filter.Gender != "" && u.Gender != filter.Gender {
			continue
		}
		users = append(users, cloneUser(u))
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Id < users[j].Id })
	return users, nil
}

func (r *fakeUserRepo) Create(_ context.Context, user entity.User) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return "", repository.ErrDuplicateEmail
		}
	}
	user.Id = uuid.New().String()
	user.CreatedAt = time.Now()
	r.users[user.Id] = cloneUser(user)
	return user.Id, nil
}

func (r *fakeUserRepo) Delete(_ context.Context, userId string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[userId]; !ok {
		return repository.ErrUserNotFound
	}
	delete(r.users, userId)
	return nil
}

func (r *fakeUserRepo) update(userId string, fn func(u *entity.User)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userId]
	if !ok {
		return repository.ErrUserNotFound
	}
	fn(&u)
	r.users[userId] = u
	return nil
}

func (r *fakeUserRepo) UpdateGender(_ context.Context, userId, gender string) error {
	return r.update(userId, func(u *entity.User) { u.Gender = gender })
}

func (r *fakeUserRepo) UpdateDescription(_ context.Context, userId, description string) error {
	return r.update(userId, func(u *entity.User) { u.Description = description })
}

func listField(u *entity.User, list string) *[]string {
	switch list {
	case entity.ListTurnOns:
		return &u.TurnOns
	case entity.ListLookingFor:
		return &u.LookingFor
	case entity.ListProfileImages:
		return &u.ProfileImages
	}
	return nil
}

func (r *fakeUserRepo) AddToList(_ context.Context, userId, list, value string) error {
	return r.update(userId, func(u *entity.User) {
		if f := listField(u, list); f != nil {
			*f = addToSet(*f, value)
		}
	})
}

func (r *fakeUserRepo) RemoveFromList(_ context.Context, userId, list, value string) error {
	return r.update(userId, func(u *entity.User) {
		if f := listField(u, list); f != nil {
			*f = pull(*f, value)
		}
	})
}

func (r *fakeUserRepo) SetOnline(_ context.Context, userId string, online bool) error {
	return r.update(userId, func(u *entity.User) { u.IsOnline = online })
}

func (r *fakeUserRepo) AddLike(_ context.Context, userId, targetId string) error {
	if err := r.update(targetId, func(u *entity.User) { u.ReceivedLikes = addToSet(u.ReceivedLikes, userId) }); err != nil {
		return err
	}
	return r.update(userId, func(u *entity.User) { u.Crushes = addToSet(u.Crushes, targetId) })
}

func (r *fakeUserRepo) LinkMatch(_ context.Context, a, b string) error {
	for _, pair := range [][2]string{{a, b}, {b, a}} {
		other := pair[1]
		err := r.update(pair[0], func(u *entity.User) {
			u.Matches = addToSet(u.Matches, other)
			u.Crushes = pull(u.Crushes, other)
			u.ReceivedLikes = pull(u.ReceivedLikes, other)
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeUserRepo) UnlinkMatch(_ context.Context, a, b string) error {
	for _, pair := range [][2]string{{a, b}, {b, a}} {
		other := pair[1]
		_ = r.update(pair[0], func(u *entity.User) { u.Matches = pull(u.Matches, other) })
	}
	return nil
}

func (r *fakeUserRepo) PullReferences(_ context.Context, userId string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, u := range r.users {
		u.Crushes = pull(u.Crushes, userId)
		u.ReceivedLikes = pull(u.ReceivedLikes, userId)
		u.Matches = pull(u.Matches, userId)
		r.users[id] = u
	}
	return nil
}

type fakeMatchRepo struct {
	mu      sync.Mutex
	matches map[string]entity.Match
}

func newFakeMatchRepo() *fakeMatchRepo {
	return &fakeMatchRepo{matches: map[string]entity.Match{}}
}

func (r *fakeMatchRepo) Upsert(_ context.Context, a, b string) (entity.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := entity.PairKey(a, b)
	if m, ok := r.matches[key]; ok {
		return m, nil
	}
	m := entity.Match{Id: uuid.New().String(), Users: entity.SortedPair(a, b), PairKey: key, CreatedAt: time.Now()}
	r.matches[key] = m
	return m, nil
}

func (r *fakeMatchRepo) GetByPair(_ context.Context, a, b string) (entity.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.matches[entity.PairKey(a, b)]
	if !ok {
		return entity.Match{}, repository.ErrMatchNotFound
	}
	return m, nil
}

func (r *fakeMatchRepo) DeleteByPair(_ context.Context, a, b string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := entity.PairKey(a, b)
	if _, ok := r.matches[key]; !ok {
		return repository.ErrMatchNotFound
	}
	delete(r.matches, key)
	return nil
}

func (r *fakeMatchRepo) DeleteByUser(_ context.Context, userId string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, m := range r.matches {
		if m.Users[0] == userId || m.Users[1] == userId {
			delete(r.matches, key)
		}
	}
	return nil
}

type fakeMessageRepo struct {
	mu       sync.Mutex
	messages []entity.Message
}

func (r *fakeMessageRepo) Create(_ context.Context, message entity.Message) (entity.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	message.Id = uuid.New().String()
	message.Seq = primitive.NewObjectID()
	r.messages = append(r.messages, message)
	return message, nil
}

func (r *fakeMessageRepo) Get(_ context.Context, messageId string) (entity.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.messages {
		if m.Id == messageId {
			return m, nil
		}
	}
	return entity.Message{}, repository.ErrMessageNotFound
}

func (r *fakeMessageRepo) Conversation(_ context.Context, filter entity.ConversationFilter) ([]entity.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []entity.Message{}
	for _, m := range r.messages {
		pair := (m.SenderId == filter.UserA && m.ReceiverId == filter.UserB) ||
			(m.SenderId == filter.UserB && m.ReceiverId == filter.UserA)
		if !pair {
			continue
		}
		if !filter.Before.IsZero() && !m.Timestamp.Before(filter.Before) {
			continue
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.Before(out[j].Timestamp)
		}
		return bytes.Compare(out[i].Seq[:], out[j].Seq[:]) < 0
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[len(out)-filter.Limit:]
	}
	return out, nil
}

func (r *fakeMessageRepo) DeleteBySender(_ context.Context, senderId string, ids []string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	want := map[string]bool{}
	for _, id := range ids {
		want[id] = true
	}
	var kept []entity.Message
	var n int64
	for _, m := range r.messages {
		if want[m.Id] && m.SenderId == senderId {
			n++
			continue
		}
		kept = append(kept, m)
	}
	r.messages = kept
	return n, nil
}

func (r *fakeMessageRepo) DeleteByParticipant(_ context.Context, userId string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var kept []entity.Message
	for _, m := range r.messages {
		if m.SenderId != userId && m.ReceiverId != userId {
			kept = append(kept, m)
		}
	}
	r.messages = kept
	return nil
}

type fakeRefreshTokenRepo struct {
	mu     sync.Mutex
	tokens map[string]entity.RefreshToken
}

func newFakeRefreshTokenRepo() *fakeRefreshTokenRepo {
	return &fakeRefreshTokenRepo{tokens: map[string]entity.RefreshToken{}}
}

func (r *fakeRefreshTokenRepo) Create(_ context.Context, t entity.RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t.Id = uuid.New().String()
	t.CreatedAt = time.Now()
	r.tokens[t.Token] = t
	return nil
}

func (r *fakeRefreshTokenRepo) GetByToken(_ context.Context, token string) (entity.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tokens[token]
	if !ok {
		return entity.RefreshToken{}, repository.ErrTokenNotFound
	}
	return t, nil
}

func (r *fakeRefreshTokenRepo) Revoke(_ context.Context, token string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tokens[token]
	if !ok || t.IsRevoked {
		return false, nil
	}
	now := time.Now()
	t.IsRevoked = true
	t.RevokedAt = &now
	r.tokens[token] = t
	return true, nil
}

func (r *fakeRefreshTokenRepo) RevokeAllByUserId(_ context.Context, userId string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k, t := range r.tokens {
		if t.UserId == userId {
			t.IsRevoked = true
			r.tokens[k] = t
		}
	}
	return nil
}

func (r *fakeRefreshTokenRepo) DeleteExpired(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for k, t := range r.tokens {
		if t.Expired(time.Now()) {
			delete(r.tokens, k)
			n++
		}
	}
	return n, nil
}

type fakeProductRepo struct {
	mu       sync.Mutex
	products map[string]entity.Product
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: map[string]entity.Product{}}
}

func (r *fakeProductRepo) Index(_ context.Context, topic string) ([]entity.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []entity.Product{}
	for _, p := range r.products {
		if topic == "" || p.Topic == topic {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakeProductRepo) Get(_ context.Context, id string) (entity.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return entity.Product{}, repository.ErrProductNotFound
	}
	return p, nil
}

func (r *fakeProductRepo) Create(_ context.Context, p entity.Product) (entity.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p.Id = uuid.New().String()
	r.products[p.Id] = p
	return p, nil
}

func (r *fakeProductRepo) Update(_ context.Context, p entity.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.products[p.Id]
	if !ok {
		return repository.ErrProductNotFound
	}
	existing.Name, existing.Price, existing.Topic, existing.Image = p.Name, p.Price, p.Topic, p.Image
	r.products[p.Id] = existing
	return nil
}

func (r *fakeProductRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[id]; !ok {
		return repository.ErrProductNotFound
	}
	delete(r.products, id)
	return nil
}

type notification struct {
	userId string
	event  string
	data   any
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []notification
}

func (n *recordingNotifier) Notify(userId, event string, data any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, notification{userId, event, data})
}

func (n *recordingNotifier) events() []notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notification{}, n.sent...)
}
