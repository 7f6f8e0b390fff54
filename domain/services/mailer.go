package services

import "context"

// Mailer is the out-of-band delivery collaborator for guest restore links.
type Mailer interface {
	SendRestoreLink(ctx context.Context, to, guestName, restoreURL string) error
}
