package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/evpulse/pulse-bot/internal/models"
	apperrors "github.com/evpulse/pulse-bot/pkg/errors"
)

// MemoryStorage keeps all records in process. Used for local development and
// tests; guards itself with a RWMutex so concurrent handlers stay safe.
type MemoryStorage struct {
	mu       sync.RWMutex
	users    map[string]*models.User
	messages map[string]*models.Message
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		users:    make(map[string]*models.User),
		messages: make(map[string]*models.Message),
	}
}

func (s *MemoryStorage) GetUser(ctx context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, exists := s.users[id]
	if !exists {
		return nil, ErrNotFound
	}
	return cloneUser(user), nil
}

func (s *MemoryStorage) UpsertUser(ctx context.Context, id string, patch UserPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	user, exists := s.users[id]
	if !exists {
		user = &models.User{
			ID:              id,
			TrackedChannels: []string{},
			Interests:       []string{},
			FollowedUsers:   []string{},
			CreatedAt:       now,
		}
		s.users[id] = user
	}

	if patch.RealName != nil {
		user.RealName = *patch.RealName
	}
	if patch.Role != nil {
		user.Role = *patch.Role
	}
	if patch.TrackedChannels != nil {
		user.TrackedChannels = copyStrings(*patch.TrackedChannels)
	}
	if patch.Interests != nil {
		user.Interests = copyStrings(*patch.Interests)
	}
	if patch.FollowedUsers != nil {
		user.FollowedUsers = copyStrings(*patch.FollowedUsers)
	}
	if patch.Muted != nil {
		user.Muted = *patch.Muted
	}
	if patch.OnboardingCompleted != nil {
		user.OnboardingCompleted = *patch.OnboardingCompleted
	}
	user.UpdatedAt = now
	return nil
}

func (s *MemoryStorage) AddUserChannel(ctx context.Context, id, channel string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, exists := s.users[id]
	if !exists {
		return ErrNotFound
	}

	for _, c := range user.TrackedChannels {
		if c == channel {
			return nil
		}
	}
	user.TrackedChannels = append(user.TrackedChannels, channel)
	user.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *MemoryStorage) RemoveUserChannel(ctx context.Context, id, channel string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, exists := s.users[id]
	if !exists {
		return ErrNotFound
	}

	kept := user.TrackedChannels[:0]
	for _, c := range user.TrackedChannels {
		if c != channel {
			kept = append(kept, c)
		}
	}
	user.TrackedChannels = kept
	user.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *MemoryStorage) RecordActivity(ctx context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, exists := s.users[id]
	if !exists {
		user = &models.User{
			ID:              id,
			TrackedChannels: []string{},
			Interests:       []string{},
			FollowedUsers:   []string{},
			CreatedAt:       at,
		}
		s.users[id] = user
	}

	user.MessageCount++
	user.LastActive = at
	user.UpdatedAt = at
	return nil
}

func (s *MemoryStorage) DeleteUser(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.users, id)
	return nil
}

func (s *MemoryStorage) SaveMessage(ctx context.Context, msg *models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *msg
	s.messages[msg.ID] = &stored
	return nil
}

func (s *MemoryStorage) MessagesByChannel(ctx context.Context, channelID string, since time.Time) ([]*models.Message, error) {
	return s.filterMessages(func(m *models.Message) bool {
		return m.ChannelID == channelID
	}, since), nil
}

func (s *MemoryStorage) MessagesByUser(ctx context.Context, userID string, since time.Time) ([]*models.Message, error) {
	return s.filterMessages(func(m *models.Message) bool {
		return m.UserID == userID
	}, since), nil
}

func (s *MemoryStorage) ReceivedDMs(ctx context.Context, recipientID string, since time.Time) ([]*models.Message, error) {
	return s.filterMessages(func(m *models.Message) bool {
		return m.RecipientID == recipientID && m.ChannelKind == models.DirectMessage
	}, since), nil
}

func (s *MemoryStorage) SetMessagePinned(ctx context.Context, channelID, timestamp string, pinned bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, msg := range s.messages {
		if msg.ChannelID == channelID && msg.Timestamp == timestamp {
			msg.Pinned = pinned
			return nil
		}
	}
	return apperrors.ErrMessageNotFound
}

func (s *MemoryStorage) Close() error {
	// Nothing to close for in-memory storage
	return nil
}

// filterMessages returns matching messages stored at or after since, newest
// first. The window lower bound is inclusive.
func (s *MemoryStorage) filterMessages(match func(*models.Message) bool, since time.Time) []*models.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*models.Message
	for _, msg := range s.messages {
		if !match(msg) || msg.CreatedAt.Before(since) {
			continue
		}
		stored := *msg
		result = append(result, &stored)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result
}

func cloneUser(u *models.User) *models.User {
	clone := *u
	clone.TrackedChannels = copyStrings(u.TrackedChannels)
	clone.Interests = copyStrings(u.Interests)
	clone.FollowedUsers = copyStrings(u.FollowedUsers)
	return &clone
}

func copyStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}
