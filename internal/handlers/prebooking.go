package handlers

import "github.com/AnshRaj112/frontline-fury-backend/internal/models"

// PreBookingResource serves /api/prebooking from the "prebookings" collection.
var PreBookingResource = Resource{
	Collection: "prebookings",
	Schema:     models.PreBookingSchema,
	NotFound:   "Pre-booking not found",
	Created:    "Pre-booking submitted successfully",
	Updated:    "Pre-booking updated successfully",
	Deleted:    "Pre-booking deleted successfully",
}
