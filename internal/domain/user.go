package domain

type UserType string

const (
	UserTypeResident  UserType = "resident"
	UserTypeVolunteer UserType = "volunteer"
	UserTypeAdmin     UserType = "admin"
)

// User is the directory's view of an account. The directory data is owned by
// the identity service; this service only reads it.
type User struct {
	ID             string   `bson:"_id" json:"id"`
	Name           string   `bson:"name" json:"name"`
	Type           UserType `bson:"type" json:"type"`
	OrganizationID string   `bson:"organization_id" json:"organization_id"`
}

// Actor is the authenticated caller, extracted from the bearer token.
type Actor struct {
	ID             string
	Name           string
	Type           UserType
	OrganizationID string
}
