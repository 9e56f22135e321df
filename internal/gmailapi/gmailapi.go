package gmailapi

import (
	"context"
	"fmt"

	"google.golang.org/api/gmail/v1"
)

// Client is the slice of the mail provider's API the labeler consumes.
type Client interface {
	ListLabels(ctx context.Context) ([]*gmail.Label, error)
	CreateLabel(ctx context.Context, name string) (*gmail.Label, error)
	SearchMessages(ctx context.Context, query string) ([]string, error)
	MessageLabelIDs(ctx context.Context, messageID string) ([]string, error)
	AddLabel(ctx context.Context, messageID, labelID string) error
}

// Query renders the provider search expression selecting messages from the
// given sender within the lookback window.
func Query(sender string, lookbackDays int) string {
	return fmt.Sprintf("from:%s newer_than:%dd", sender, lookbackDays)
}
