package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"civicfix-be/apperrors"
	"civicfix-be/models"
)

// MongoIssueStore stores issues in a MongoDB collection.
type MongoIssueStore struct {
	col *mongo.Collection
}

func NewMongoIssueStore(col *mongo.Collection) *MongoIssueStore {
	return &MongoIssueStore{col: col}
}

func (s *MongoIssueStore) Insert(ctx context.Context, issue *models.Issue) (primitive.ObjectID, error) {
	if issue.ID.IsZero() {
		issue.ID = primitive.NewObjectID()
	}
	if _, err := s.col.InsertOne(ctx, issue); err != nil {
		return primitive.NilObjectID, apperrors.NewInternalError("failed to create issue", err.Error())
	}
	return issue.ID, nil
}

func (s *MongoIssueStore) Get(ctx context.Context, id primitive.ObjectID) (*models.Issue, error) {
	var issue models.Issue
	err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&issue)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.NewNotFoundError("issue not found")
		}
		return nil, apperrors.NewInternalError("failed to retrieve issue", err.Error())
	}
	return &issue, nil
}

func (s *MongoIssueStore) FindAll(ctx context.Context) ([]models.Issue, error) {
	return s.find(ctx, bson.M{})
}

func (s *MongoIssueStore) FindByCreator(ctx context.Context, userID primitive.ObjectID) ([]models.Issue, error) {
	return s.find(ctx, bson.M{"createdBy": userID})
}

func (s *MongoIssueStore) find(ctx context.Context, filter bson.M) ([]models.Issue, error) {
	// Insertion order as the base order; equal createdAt ties are pinned by
	// _id so downstream stable sorts see a deterministic input.
	findOptions := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})

	cursor, err := s.col.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to retrieve issues", err.Error())
	}
	defer cursor.Close(ctx)

	issues := []models.Issue{}
	if err := cursor.All(ctx, &issues); err != nil {
		return nil, apperrors.NewInternalError("failed to decode issues", err.Error())
	}
	return issues, nil
}

func (s *MongoIssueStore) Update(ctx context.Context, id primitive.ObjectID, patch IssuePatch) (*models.Issue, error) {
	set := bson.M{"updatedAt": time.Now()}
	if patch.Status != nil {
		set["status"] = *patch.Status
	}
	if patch.ResolutionNotes != nil {
		set["resolutionNotes"] = *patch.ResolutionNotes
	}
	if patch.AssignedTo != nil {
		set["assignedTo"] = *patch.AssignedTo
	}

	// Single-document FindOneAndUpdate keeps the update atomic per record:
	// the last committed write wins in full.
	after := options.After
	opts := options.FindOneAndUpdate().SetReturnDocument(after)

	var updated models.Issue
	err := s.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&updated)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.NewNotFoundError("issue not found")
		}
		return nil, apperrors.NewInternalError("failed to update issue", err.Error())
	}
	return &updated, nil
}

func (s *MongoIssueStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := s.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return apperrors.NewInternalError("failed to delete issue", err.Error())
	}
	if result.DeletedCount == 0 {
		return apperrors.NewNotFoundError("issue not found")
	}
	return nil
}
