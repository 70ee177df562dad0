package models

import "time"

// Booking types.
const (
	BookingTypeMembership = "membership"
	BookingTypeOneOff     = "one_off"
)

// Booking statuses.
const (
	BookingStatusPending   = "pending"
	BookingStatusConfirmed = "confirmed"
	BookingStatusCancelled = "cancelled"
)

// Bookable reference kinds. A booking points at a coach when one was chosen,
// otherwise at the service itself.
const (
	BookableTypeCoach   = "coach"
	BookableTypeService = "service"
)

// Caller roles carried by the auth token.
const (
	RoleClient = "client"
	RoleCoach  = "coach"
	RoleStaff  = "staff"
)

// Booking is the persisted booking record.
type Booking struct {
	ID              string     `bson:"id" json:"id"`
	ClientID        string     `bson:"client_id" json:"clientId"`
	BookingType     string     `bson:"booking_type" json:"bookingType"` // membership | one_off
	LocationID      string     `bson:"location_id" json:"locationId"`
	ServiceIDs      []string   `bson:"service_ids" json:"serviceIds"`
	BookableType    string     `bson:"bookable_type" json:"bookableType"` // coach | service
	BookableID      string     `bson:"bookable_id" json:"bookableId"`
	StartTime       time.Time  `bson:"start_time" json:"startTime"`
	EndTime         time.Time  `bson:"end_time" json:"endTime"`
	Status          string     `bson:"status" json:"status"` // pending | confirmed | cancelled
	ResourceIDs     []string   `bson:"resource_ids,omitempty" json:"resourceIds,omitempty"`
	DurationMinutes int        `bson:"duration_minutes,omitempty" json:"durationMinutes,omitempty"` // only for variable-duration services
	SubscriptionID  string     `bson:"subscription_id,omitempty" json:"subscriptionId,omitempty"`   // membership linkage
	PlanServiceID   string     `bson:"plan_service_id,omitempty" json:"planServiceId,omitempty"`
	PaymentIntentID string     `bson:"payment_intent_id,omitempty" json:"paymentIntentId,omitempty"`
	CreatedAt       time.Time  `bson:"created_at" json:"createdAt"`
	CancelledAt     *time.Time `bson:"cancelled_at,omitempty" json:"cancelledAt,omitempty"`
}

// BookingDraft is the caller's booking intent before the saga runs. The service
// document is resolved up front so pricing and payload construction stay pure.
type BookingDraft struct {
	ClientID        string    `json:"clientId"`
	CallerRole      string    `json:"callerRole"`
	LocationID      string    `json:"locationId"`
	Service         Service   `json:"service"`
	CoachID         string    `json:"coachId,omitempty"`     // optional; bookable falls back to the service
	ResourceIDs     []string  `json:"resourceIds,omitempty"` // auto-selected before the saga starts
	StartTime       time.Time `json:"startTime"`
	EndTime         time.Time `json:"endTime"`
	DurationMinutes int       `json:"durationMinutes,omitempty"` // chosen duration, variable services only
}
