package gmailapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// userID is the provider's alias for the authorized account
const userID = "me"

// APIClient implements Client on top of the Gmail REST API
type APIClient struct {
	svc *gmail.Service
}

// NewAPIClient builds a Gmail service authenticated with the given token.
// The token source refreshes transparently for the duration of the run.
func NewAPIClient(ctx context.Context, config *oauth2.Config, token *oauth2.Token) (*APIClient, error) {
	svc, err := gmail.NewService(ctx, option.WithTokenSource(config.TokenSource(ctx, token)))
	if err != nil {
		return nil, fmt.Errorf("creating Gmail service: %w", err)
	}
	return &APIClient{svc: svc}, nil
}

func (c *APIClient) ListLabels(ctx context.Context) ([]*gmail.Label, error) {
	resp, err := c.svc.Users.Labels.List(userID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("listing labels: %w", err)
	}
	return resp.Labels, nil
}

func (c *APIClient) CreateLabel(ctx context.Context, name string) (*gmail.Label, error) {
	label := &gmail.Label{
		Name:                  name,
		LabelListVisibility:   "labelShow",
		MessageListVisibility: "show",
	}

	created, err := c.svc.Users.Labels.Create(userID, label).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("creating label %q: %w", name, err)
	}
	return created, nil
}

// SearchMessages returns the IDs of all messages matching the query,
// following pagination to exhaustion.
func (c *APIClient) SearchMessages(ctx context.Context, query string) ([]string, error) {
	var ids []string
	pageToken := ""

	for {
		req := c.svc.Users.Messages.List(userID).Q(query).Context(ctx)
		if pageToken != "" {
			req.PageToken(pageToken)
		}

		resp, err := req.Do()
		if err != nil {
			return nil, fmt.Errorf("searching messages with query %q: %w", query, err)
		}

		for _, m := range resp.Messages {
			ids = append(ids, m.Id)
		}

		if resp.NextPageToken == "" {
			break
		}
		pageToken = resp.NextPageToken
	}

	return ids, nil
}

func (c *APIClient) MessageLabelIDs(ctx context.Context, messageID string) ([]string, error) {
	msg, err := c.svc.Users.Messages.Get(userID, messageID).Format("metadata").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("fetching message %s: %w", messageID, err)
	}
	return msg.LabelIds, nil
}

func (c *APIClient) AddLabel(ctx context.Context, messageID, labelID string) error {
	req := &gmail.ModifyMessageRequest{
		AddLabelIds: []string{labelID},
	}

	if _, err := c.svc.Users.Messages.Modify(userID, messageID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("adding label to message %s: %w", messageID, err)
	}
	return nil
}

// IsAlreadyExists reports whether err is the provider's conflict response,
// returned when creating a label whose name is already taken.
func IsAlreadyExists(err error) bool {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusConflict
	}
	return false
}
