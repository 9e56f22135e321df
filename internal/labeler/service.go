package labeler

import (
	"context"
	"fmt"

	"gmail-auto-labeler/internal/gmailapi"
	"gmail-auto-labeler/internal/logging"
	"gmail-auto-labeler/internal/models"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type Service struct {
	client   gmailapi.Client
	config   *models.Config
	labelIDs map[string]string // label name -> provider label ID, filled lazily
}

// Stats summarizes a labeling run
type Stats struct {
	Applied        int
	AlreadyLabeled int
	FailedMessages int
	FailedRules    int
}

// NewService creates a new labeling Service with the provided API client and configuration
func NewService(client gmailapi.Client, config *models.Config) *Service {
	return &Service{
		client:   client,
		config:   config,
		labelIDs: make(map[string]string),
	}
}

// Run applies every configured rule in order. Rule and message failures are
// logged and skipped; only the caller's config/auth phases can abort a run.
func (s *Service) Run(ctx context.Context) Stats {
	var stats Stats

	for _, rule := range s.config.Rules {
		locallog := logging.Log.WithFields(logrus.Fields{
			"trace_id": uuid.New().String(),
			"sender":   rule.Sender,
			"label":    rule.Label,
		})

		if err := s.applyRule(ctx, rule, &stats, locallog); err != nil {
			locallog.Errorf("Error applying rule for %s: %v", rule.Sender, err)
			stats.FailedRules++
		}
	}

	return stats
}

func (s *Service) applyRule(ctx context.Context, rule models.Rule, stats *Stats, locallog *logrus.Entry) error {
	labelID, err := s.ensureLabel(ctx, rule.Label, locallog)
	if err != nil {
		return err
	}

	messageIDs, err := s.client.SearchMessages(ctx, gmailapi.Query(rule.Sender, s.config.LookbackDays))
	if err != nil {
		return err
	}

	if len(messageIDs) == 0 {
		locallog.Infof("No messages from %s in the last %d days", rule.Sender, s.config.LookbackDays)
		return nil
	}

	for _, messageID := range messageIDs {
		switch result := s.applyLabel(ctx, messageID, labelID, locallog); result {
		case models.ResultApplied:
			stats.Applied++
			locallog.Infof("Labeled message %s with %q", messageID, rule.Label)
		case models.ResultAlreadyLabeled:
			stats.AlreadyLabeled++
			locallog.Infof("Message %s already has label %q", messageID, rule.Label)
		case models.ResultFailed:
			stats.FailedMessages++
		}
	}

	return nil
}

// applyLabel attaches labelID to the message unless it is already present.
// Reruns overlap lookback windows, so the already-labeled case is routine.
func (s *Service) applyLabel(ctx context.Context, messageID, labelID string, locallog *logrus.Entry) models.ApplyResult {
	existing, err := s.client.MessageLabelIDs(ctx, messageID)
	if err != nil {
		locallog.Errorf("Error fetching message %s: %v", messageID, err)
		return models.ResultFailed
	}

	for _, id := range existing {
		if id == labelID {
			return models.ResultAlreadyLabeled
		}
	}

	if err := s.client.AddLabel(ctx, messageID, labelID); err != nil {
		locallog.Errorf("Error labeling message %s: %v", messageID, err)
		return models.ResultFailed
	}

	return models.ResultApplied
}

// ensureLabel resolves a label name to its provider ID, creating the label
// on first use. Creation racing another client is tolerated: a conflict
// response sends us back to the label list.
func (s *Service) ensureLabel(ctx context.Context, name string, locallog *logrus.Entry) (string, error) {
	if id, ok := s.labelIDs[name]; ok {
		return id, nil
	}

	id, err := s.findLabel(ctx, name)
	if err != nil {
		return "", err
	}
	if id != "" {
		s.labelIDs[name] = id
		return id, nil
	}

	locallog.Infof("Label %q not found, creating it", name)
	created, err := s.client.CreateLabel(ctx, name)
	if err != nil {
		if !gmailapi.IsAlreadyExists(err) {
			return "", err
		}
		id, err = s.findLabel(ctx, name)
		if err != nil {
			return "", err
		}
		if id == "" {
			return "", fmt.Errorf("label %q reported as existing but not listed", name)
		}
		s.labelIDs[name] = id
		return id, nil
	}

	s.labelIDs[name] = created.Id
	return created.Id, nil
}

func (s *Service) findLabel(ctx context.Context, name string) (string, error) {
	labels, err := s.client.ListLabels(ctx)
	if err != nil {
		return "", err
	}

	for _, label := range labels {
		if label.Name == name {
			return label.Id, nil
		}
	}
	return "", nil
}
