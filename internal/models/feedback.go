package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Feedback is a visitor feedback entry of the "feedbacks" collection.
type Feedback struct {
	ID primitive.ObjectID `bson:"_id,omitempty" json:"_id"`

	Rating          *float64 `bson:"rating,omitempty" json:"rating,omitempty"`
	Thoughts        *string  `bson:"thoughts,omitempty" json:"thoughts,omitempty"`
	VisitFrequency  *string  `bson:"visit_frequency,omitempty" json:"visit_frequency,omitempty"`
	GameModeRequest *string  `bson:"game_mode_request,omitempty" json:"game_mode_request,omitempty"`
	ArenaUpgrade    *string  `bson:"arena_upgrade,omitempty" json:"arena_upgrade,omitempty"`
	CustomRequest   *string  `bson:"custom_request,omitempty" json:"custom_request,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

var FeedbackSchema = Schema{
	Name: "Feedback",
	Fields: []Field{
		{Name: "rating", Kind: Number},
		{Name: "thoughts", Kind: String},
		{Name: "visit_frequency", Kind: String},
		{Name: "game_mode_request", Kind: String},
		{Name: "arena_upgrade", Kind: String},
		{Name: "custom_request", Kind: String},
	},
}
