package domain

import "time"

type EventType string

const (
	EventTypeAddToCart EventType = "add_to_cart"
)

// AnalyticsEvent is one row of product_analytics. An empty UserID is an
// anonymous session and is stored as NULL.
type AnalyticsEvent struct {
	ID        string
	ProductID ProductID
	EventType EventType
	UserID    string
	CreatedAt time.Time
}
