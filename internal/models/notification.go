package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	NotifyBooked      = "booked"
	NotifyCancelled   = "cancelled"
	NotifyRescheduled = "rescheduled"
	NotifyConfirmed   = "confirmed"
	NotifyDiagnosis   = "diagnosis"
	NotifyReportReady = "report_ready"
)

// Notification is an in-app feed entry stored in MongoDB.
type Notification struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    uint               `bson:"userId" json:"user_id"`
	Kind      string             `bson:"kind" json:"kind"`
	Title     string             `bson:"title" json:"title"`
	Message   string             `bson:"message" json:"message"`
	Channels  map[string]bool    `bson:"channels" json:"channels"` // delivery result per channel
	Read      bool               `bson:"read" json:"read"`
	CreatedAt time.Time          `bson:"createdAt" json:"created_at"`
}
