package handlers

import "github.com/AnshRaj112/frontline-fury-backend/internal/models"

// FeedbackResource serves /api/feedback from the "feedbacks" collection.
var FeedbackResource = Resource{
	Collection: "feedbacks",
	Schema:     models.FeedbackSchema,
	NotFound:   "Feedback not found",
	Created:    "Feedback submitted successfully",
	Updated:    "Feedback updated successfully",
	Deleted:    "Feedback deleted successfully",
}
