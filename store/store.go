// Package store holds the persistence interfaces for issues and users plus
// their MongoDB and in-memory implementations.
package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"civicfix-be/models"
)

// IssuePatch carries the only issue fields mutable after creation. A nil
// field is left untouched. Anything else a caller sends is dropped before it
// gets here.
type IssuePatch struct {
	Status          *models.IssueStatus
	ResolutionNotes *string
	AssignedTo      *string
}

// IsEmpty reports whether the patch changes nothing.
func (p IssuePatch) IsEmpty() bool {
	return p.Status == nil && p.ResolutionNotes == nil && p.AssignedTo == nil
}

// IssueStore is the persistent collection of issues.
//
// Update is atomic per record: concurrent updates to the same id never
// interleave field writes; the later commit wins in full. No cross-record
// transactions are offered.
type IssueStore interface {
	Insert(ctx context.Context, issue *models.Issue) (primitive.ObjectID, error)
	Get(ctx context.Context, id primitive.ObjectID) (*models.Issue, error)
	FindAll(ctx context.Context) ([]models.Issue, error)
	FindByCreator(ctx context.Context, userID primitive.ObjectID) ([]models.Issue, error)
	Update(ctx context.Context, id primitive.ObjectID, patch IssuePatch) (*models.Issue, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// UserStore is the persistent collection of user accounts.
type UserStore interface {
	Insert(ctx context.Context, user *models.User) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}
