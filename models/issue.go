package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// IssueCategory enum
type IssueCategory string

const (
	Garbage     IssueCategory = "Garbage"
	WaterLeak   IssueCategory = "Water Leak"
	RoadSafety  IssueCategory = "Road Safety"
	Pothole     IssueCategory = "Pothole"
	Streetlight IssueCategory = "Streetlight"
	Other       IssueCategory = "Other"
)

// IsValid reports whether c is one of the known categories.
func (c IssueCategory) IsValid() bool {
	switch c {
	case Garbage, WaterLeak, RoadSafety, Pothole, Streetlight, Other:
		return true
	}
	return false
}

// IssueStatus enum
type IssueStatus string

const (
	Pending    IssueStatus = "Pending"
	InProgress IssueStatus = "In Progress"
	Resolved   IssueStatus = "Resolved"
)

// IsValid reports whether s is one of the known statuses.
func (s IssueStatus) IsValid() bool {
	switch s {
	case Pending, InProgress, Resolved:
		return true
	}
	return false
}

// Issue represents a civic issue reported by a user.
//
// Title, description, category, coordinates, image reference and creator are
// write-once at creation. Status, resolution notes and assignment are the only
// fields mutable afterwards, and only through the issue service.
type Issue struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title           string             `bson:"title" json:"title"`
	Description     string             `bson:"description" json:"description"`
	Category        IssueCategory      `bson:"category" json:"category"`
	Latitude        float64            `bson:"latitude" json:"latitude"`
	Longitude       float64            `bson:"longitude" json:"longitude"`
	ImageRef        string             `bson:"imageRef" json:"imageRef"`
	Status          IssueStatus        `bson:"status" json:"status"`
	ResolutionNotes string             `bson:"resolutionNotes,omitempty" json:"resolutionNotes,omitempty"`
	AssignedTo      string             `bson:"assignedTo,omitempty" json:"assignedTo,omitempty"`
	CreatedBy       primitive.ObjectID `bson:"createdBy" json:"createdBy"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}
