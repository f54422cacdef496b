package models

// Group is a reusable participant list, e.g. "Anak Kos" or "Tim Kantor".
// Creating a bill from a group pre-fills its members as participants.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	// Name is the display name of the group.
	Name string

	// CreatorID references the user who owns the group.
	CreatorID string

	// Members are the people in this group.
	Members []GroupMember

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64
}

// GroupMember is one person in a group. Members may be linked to an
// account or exist as display names only.
type GroupMember struct {
	// ID is the unique identifier for the member (UUID format).
	ID string

	// GroupID is the owning group.
	GroupID string

	// UserID is the linked account, empty for name-only members.
	UserID string

	// DisplayName is shown wherever the member appears.
	DisplayName string
}
