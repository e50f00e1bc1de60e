package model

// DefaultLocation is stored for city and region until the owner edits them.
const DefaultLocation = "Unspecified"

// Business is the seller profile created for every user at registration.
// OwnerID is fixed at creation; Logo holds a bare filename under the
// static images directory, or "" when no logo was uploaded.
type Business struct {
	ID          uint64 `json:"id"`                   // businesses.id
	Name        string `json:"business_name"`        // businesses.business_name
	Description string `json:"business_description"` // businesses.business_description (nullable)
	Logo        string `json:"logo"`                 // businesses.logo
	City        string `json:"city"`                 // businesses.city
	Region      string `json:"region"`               // businesses.region
	OwnerID     uint64 `json:"owner_id"`             // businesses.owner_id
}

// NewBusinessFor returns the default business row for a freshly created user.
func NewBusinessFor(u *User) *Business {
	return &Business{
		Name:    u.Username,
		City:    DefaultLocation,
		Region:  DefaultLocation,
		OwnerID: u.ID,
	}
}
