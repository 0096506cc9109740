package domain

import "time"

type ReportStatus string

const (
	ReportPending   ReportStatus = "pending"
	ReportReviewed  ReportStatus = "reviewed"
	ReportResolved  ReportStatus = "resolved"
	ReportDismissed ReportStatus = "dismissed"
)

const (
	MinReportReasonLength = 10
	MaxReportReasonLength = 500
)

// Report records an abuse complaint against a letter and its author.
// admin_notes, resolved_by and resolved_at are written by the moderation
// service, never here.
type Report struct {
	ID               string       `bson:"_id" json:"id"`
	ReporterID       string       `bson:"reporter_id" json:"reporter_id"`
	ReportedUserID   string       `bson:"reported_user_id,omitempty" json:"reported_user_id,omitempty"`
	ReportedLetterID string       `bson:"reported_letter_id,omitempty" json:"reported_letter_id,omitempty"`
	Reason           string       `bson:"reason" json:"reason"`
	Status           ReportStatus `bson:"status" json:"status"`
	AdminNotes       string       `bson:"admin_notes,omitempty" json:"admin_notes,omitempty"`
	ResolvedBy       string       `bson:"resolved_by,omitempty" json:"resolved_by,omitempty"`
	ResolvedAt       *time.Time   `bson:"resolved_at,omitempty" json:"resolved_at,omitempty"`
	CreatedAt        time.Time    `bson:"created_at" json:"created_at"`
}
