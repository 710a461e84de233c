package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PreBooking is a pre-booking request of the "prebookings" collection.
// Duplicate names and emails are allowed.
type PreBooking struct {
	ID primitive.ObjectID `bson:"_id,omitempty" json:"_id"`

	Name       *string `bson:"name,omitempty" json:"name,omitempty"`
	Email      *string `bson:"email,omitempty" json:"email,omitempty"`
	Mobile     *string `bson:"mobile,omitempty" json:"mobile,omitempty"`
	City       *string `bson:"city,omitempty" json:"city,omitempty"`
	OtherCity  *string `bson:"otherCity,omitempty" json:"otherCity,omitempty"`
	Comments   *string `bson:"comments,omitempty" json:"comments,omitempty"`
	AgreeTerms *bool   `bson:"agreeTerms,omitempty" json:"agreeTerms,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

var PreBookingSchema = Schema{
	Name: "PreBooking",
	Fields: []Field{
		{Name: "name", Kind: String},
		{Name: "email", Kind: String},
		{Name: "mobile", Kind: String},
		{Name: "city", Kind: String},
		{Name: "otherCity", Kind: String},
		{Name: "comments", Kind: String},
		{Name: "agreeTerms", Kind: Boolean},
	},
}
