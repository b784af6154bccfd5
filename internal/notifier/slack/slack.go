package slack

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/slack-go/slack"
	"github.com/travis-scholtens/sladdle/internal/lineup"
	"github.com/travis-scholtens/sladdle/internal/metrics"
	"github.com/travis-scholtens/sladdle/internal/notifier"
)

// slackClient is an interface that contains the methods from the slack.Client that we use.
// This allows for easy mocking in tests.
type slackClient interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
	PostEphemeralContext(ctx context.Context, channelID, userID string, options ...slack.MsgOption) (string, error)
}

var _ notifier.Notifier = &Notifier{}

// Notifier handles sending responses and announcements to Slack.
type Notifier struct {
	api     slackClient
	metrics metrics.Metrics
}

// NewNotifier creates a new Notifier.
func NewNotifier(token string, metrics metrics.Metrics) *Notifier {
	return &Notifier{
		api:     slack.New(token),
		metrics: metrics,
	}
}

// NewNotifierWithAPI creates a new Notifier with a specific slack.Client instance.
// Useful for tests that need to intercept API calls.
func NewNotifierWithAPI(api slackClient, metrics metrics.Metrics) *Notifier {
	return &Notifier{
		api:     api,
		metrics: metrics,
	}
}

// SendEphemeral posts a plain text response visible only to the user.
func (s *Notifier) SendEphemeral(channelID, userID, text string, dryRun bool) error {
	return s.sendEphemeral(channelID, userID, dryRun, slack.MsgOptionText(text, false))
}

// SendAnnouncement posts a plain text message to the whole channel.
func (s *Notifier) SendAnnouncement(channelID, text string, dryRun bool) error {
	return s.sendMessage(channelID, dryRun, slack.MsgOptionText(text, false))
}

// SendLineup posts the lineup display, in-channel or only to the user.
func (s *Notifier) SendLineup(channelID, userID string, lu *lineup.Lineup, notice string, inChannel, dryRun bool) error {
	text, blocks := s.formatLineup(channelID, lu, notice)
	options := []slack.MsgOption{slack.MsgOptionText(text, false)}
	if len(blocks) > 0 {
		options = append(options, slack.MsgOptionBlocks(blocks...))
	}
	if inChannel {
		return s.sendMessage(channelID, dryRun, options...)
	}
	return s.sendEphemeral(channelID, userID, dryRun, options...)
}

func (s *Notifier) sendMessage(channelID string, dryRun bool, options ...slack.MsgOption) error {
	if dryRun {
		log.Info("[Dry Run] Would send Slack message", "channel", channelID)
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, timestamp, err := s.api.PostMessageContext(ctx, channelID, options...)
	if err != nil {
		s.metrics.IncSlackResponseFailed()
		log.Error("Failed to send Slack message", "error", err, "channel", channelID)
		return fmt.Errorf("failed to post message: %w", err)
	}

	s.metrics.IncSlackResponseSent()
	log.Info("Successfully sent Slack message", "channel", channelID, "timestamp", timestamp)
	return nil
}

func (s *Notifier) sendEphemeral(channelID, userID string, dryRun bool, options ...slack.MsgOption) error {
	if dryRun {
		log.Info("[Dry Run] Would send ephemeral Slack message", "channel", channelID, "user", userID)
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	timestamp, err := s.api.PostEphemeralContext(ctx, channelID, userID, options...)
	if err != nil {
		s.metrics.IncSlackResponseFailed()
		log.Error("Failed to send ephemeral Slack message", "error", err, "channel", channelID, "user", userID)
		return fmt.Errorf("failed to post ephemeral message: %w", err)
	}

	s.metrics.IncSlackResponseSent()
	log.Info("Successfully sent ephemeral Slack message", "channel", channelID, "user", userID, "timestamp", timestamp)
	return nil
}
