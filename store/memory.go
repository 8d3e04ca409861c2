package store

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"civicfix-be/apperrors"
	"civicfix-be/models"
)

// MemoryIssueStore is an in-memory IssueStore. It preserves insertion order
// and serializes updates per store, which satisfies the per-record atomicity
// the interface demands. Used in tests and for running without a database.
type MemoryIssueStore struct {
	mu     sync.RWMutex
	order  []primitive.ObjectID
	issues map[primitive.ObjectID]models.Issue
}

func NewMemoryIssueStore() *MemoryIssueStore {
	return &MemoryIssueStore{
		issues: make(map[primitive.ObjectID]models.Issue),
	}
}

func (s *MemoryIssueStore) Insert(_ context.Context, issue *models.Issue) (primitive.ObjectID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if issue.ID.IsZero() {
		issue.ID = primitive.NewObjectID()
	}
	s.issues[issue.ID] = *issue
	s.order = append(s.order, issue.ID)
	return issue.ID, nil
}

func (s *MemoryIssueStore) Get(_ context.Context, id primitive.ObjectID) (*models.Issue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	issue, ok := s.issues[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("issue not found")
	}
	return &issue, nil
}

func (s *MemoryIssueStore) FindAll(_ context.Context) ([]models.Issue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Issue, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.issues[id])
	}
	return out, nil
}

func (s *MemoryIssueStore) FindByCreator(_ context.Context, userID primitive.ObjectID) ([]models.Issue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.Issue{}
	for _, id := range s.order {
		if issue := s.issues[id]; issue.CreatedBy == userID {
			out = append(out, issue)
		}
	}
	return out, nil
}

func (s *MemoryIssueStore) Update(_ context.Context, id primitive.ObjectID, patch IssuePatch) (*models.Issue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	issue, ok := s.issues[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("issue not found")
	}
	if patch.Status != nil {
		issue.Status = *patch.Status
	}
	if patch.ResolutionNotes != nil {
		issue.ResolutionNotes = *patch.ResolutionNotes
	}
	if patch.AssignedTo != nil {
		issue.AssignedTo = *patch.AssignedTo
	}
	issue.UpdatedAt = time.Now()
	s.issues[id] = issue
	return &issue, nil
}

func (s *MemoryIssueStore) Delete(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.issues[id]; !ok {
		return apperrors.NewNotFoundError("issue not found")
	}
	delete(s.issues, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// MemoryUserStore is an in-memory UserStore.
type MemoryUserStore struct {
	mu    sync.RWMutex
	users map[primitive.ObjectID]models.User
}

func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{users: make(map[primitive.ObjectID]models.User)}
}

func (s *MemoryUserStore) Insert(_ context.Context, user *models.User) (primitive.ObjectID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	s.users[user.ID] = *user
	return user.ID, nil
}

func (s *MemoryUserStore) GetByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("user not found")
	}
	return &user, nil
}

func (s *MemoryUserStore) GetByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, user := range s.users {
		if user.Email == email {
			return &user, nil
		}
	}
	return nil, apperrors.NewNotFoundError("user not found")
}
