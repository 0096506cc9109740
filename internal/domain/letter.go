package domain

import "time"

// DeliveryDelay is the simulated postal transit time between a letter being
// sent and being considered delivered.
const DeliveryDelay = 8 * time.Hour

const (
	MaxContentLength = 1000
)

type LetterStatus string

const (
	StatusDraft     LetterStatus = "draft"
	StatusSent      LetterStatus = "sent"
	StatusDelivered LetterStatus = "delivered"
	StatusRead      LetterStatus = "read"
	StatusArchived  LetterStatus = "archived"
)

// Letter is a single message between two users, or an open letter broadcast
// for claiming. Sender and receiver display names plus the formatted sent
// dates are denormalized at write time so correspondence search runs as one
// query against the letters collection.
type Letter struct {
	ID             string       `bson:"_id" json:"id"`
	SenderID       string       `bson:"sender_id" json:"sender_id"`
	SenderName     string       `bson:"sender_name" json:"sender_name"`
	SenderType     UserType     `bson:"sender_type" json:"sender_type"`
	ReceiverID     string       `bson:"receiver_id,omitempty" json:"receiver_id,omitempty"`
	ReceiverName   string       `bson:"receiver_name,omitempty" json:"receiver_name,omitempty"`
	ClaimedBy      string       `bson:"claimed_by,omitempty" json:"claimed_by,omitempty"`
	OrganizationID string       `bson:"organization_id" json:"organization_id"`
	Content        string       `bson:"content" json:"content"`
	IsOpenLetter   bool         `bson:"is_open_letter" json:"is_open_letter"`
	ParentLetterID string       `bson:"parent_letter_id,omitempty" json:"parent_letter_id,omitempty"`
	Status         LetterStatus `bson:"status" json:"status"`
	SentAt         time.Time    `bson:"sent_at" json:"sent_at"`
	DeliveredAt    time.Time    `bson:"delivered_at" json:"delivered_at"`
	ReadAt         *time.Time   `bson:"read_at,omitempty" json:"read_at,omitempty"`
	SentDateISO    string       `bson:"sent_date_iso" json:"-"`
	SentDateLong   string       `bson:"sent_date_long" json:"-"`
	CreatedAt      time.Time    `bson:"created_at" json:"created_at"`
	DeletedAt      *time.Time   `bson:"deleted_at,omitempty" json:"-"`
}

// Delivered reports whether the letter's transit window has elapsed.
func (l *Letter) Delivered(now time.Time) bool {
	return !now.Before(l.DeliveredAt)
}

// EffectiveStatus computes the time-dependent status. A stored "sent" letter
// whose delivery window has elapsed is delivered without the row being
// touched; the stored status only advances on the read transition.
func (l *Letter) EffectiveStatus(now time.Time) LetterStatus {
	if l.Status == StatusSent && l.Delivered(now) {
		return StatusDelivered
	}
	return l.Status
}

// Readable reports whether a fetch by reader should set read_at.
func (l *Letter) Readable(reader string, now time.Time) bool {
	return l.ReceiverID == reader && l.ReadAt == nil && l.Delivered(now)
}

// SentDateStrings renders the two searchable forms of a sent timestamp,
// e.g. "2026-08-31" and "August 31, 2026".
func SentDateStrings(t time.Time) (iso, long string) {
	return t.Format("2006-01-02"), t.Format("January 2, 2006")
}
