package models

// Service represents a bookable service offered at a location.
type Service struct {
	ID                 string  `bson:"id" json:"id"`                                           // Unique service identifier
	Name               string  `bson:"name" json:"name"`                                       // Display name (e.g., "1:1 Coaching Session")
	Price              float64 `bson:"price" json:"price"`                                     // Base price for the base duration
	DurationMinutes    int     `bson:"duration_minutes" json:"durationMinutes"`                // Base duration; 0 means unset (defaults to 60 for pricing)
	IsVariableDuration bool    `bson:"is_variable_duration" json:"isVariableDuration"`         // Whether the client may choose a duration
	AllowedDurations   []int   `bson:"allowed_durations,omitempty" json:"allowedDurations,omitempty"` // Ordered choices, only when variable
	RequiresResource   bool    `bson:"requires_resource" json:"requiresResource"`              // Whether a resource (court, bay, room) must be attached
	LocationID         string  `bson:"location_id" json:"locationId"`
}

// AllowsDuration reports whether the given duration is a valid choice for this service.
// Fixed-duration services accept no choice at all.
func (s Service) AllowsDuration(minutes int) bool {
	if !s.IsVariableDuration {
		return false
	}
	for _, d := range s.AllowedDurations {
		if d == minutes {
			return true
		}
	}
	return false
}
