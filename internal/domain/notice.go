package domain

import "time"

// Notice is a society-wide announcement. It stays active until it is
// deactivated manually or its expiry passes (the daily sweep handles the
// latter; last write wins between the two).
type Notice struct {
	ID          string
	Title       string
	Content     string
	SocietyID   string
	CreatedByID string
	Active      bool
	ExpiresAt   *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewNotice creates an active notice for the given society.
func NewNotice(id, title, content, societyID, createdByID string, expiresAt *time.Time) Notice {
	now := time.Now().UTC()
	return Notice{
		ID:          id,
		Title:       title,
		Content:     content,
		SocietyID:   societyID,
		CreatedByID: createdByID,
		Active:      true,
		ExpiresAt:   expiresAt,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
