package infrastructure

import (
	"context"
	"fmt"

	"github.com/LuckyYaduvanshi5/clash-cash-arena/events"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

const notifierDurable = "arena-discord-notifier"

// ChannelMessenger is the part of a discordgo session the notifier needs
type ChannelMessenger interface {
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// DiscordNotifier posts match announcements to a Discord channel
type DiscordNotifier struct {
	messenger ChannelMessenger
	channelID string
}

// NewDiscordSession opens a bot session for REST calls
func NewDiscordSession(token string) (*discordgo.Session, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}
	return session, nil
}

// NewDiscordNotifier creates a notifier posting to channelID
func NewDiscordNotifier(messenger ChannelMessenger, channelID string) *DiscordNotifier {
	return &DiscordNotifier{
		messenger: messenger,
		channelID: channelID,
	}
}

// Subscribe registers the notifier for the events announced publicly
func (n *DiscordNotifier) Subscribe(bus *events.Bus) {
	for _, eventType := range []events.EventType{
		events.EventTypeMatchCreated,
		events.EventTypeMatchJoined,
		events.EventTypeMatchSettled,
		events.EventTypeMatchDisputed,
		events.EventTypeDisputeReported,
		events.EventTypeSettlementRecovered,
	} {
		bus.Subscribe(eventType, n.Handle)
	}
}

// SubscribeNATS consumes match announcements from the arena stream instead of
// the in-process bus, so several API replicas produce one post per event
func (n *DiscordNotifier) SubscribeNATS(client *NATSClient) error {
	return client.Subscribe(SubjectPrefix+".matches.>", notifierDurable, func(data []byte) error {
		return n.HandleMessage(context.Background(), data)
	})
}

// HandleMessage decodes a NATS envelope and posts it. Undecodable envelopes
// are acknowledged and skipped.
func (n *DiscordNotifier) HandleMessage(ctx context.Context, data []byte) error {
	event, err := DecodeEnvelope(data)
	if err != nil {
		log.WithError(err).Debug("Skipping NATS message")
		return nil
	}

	content := n.format(event)
	if content == "" {
		return nil
	}
	if _, err := n.messenger.ChannelMessageSend(n.channelID, content, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to post Discord notification: %w", err)
	}
	return nil
}

// Handle posts an announcement for event
func (n *DiscordNotifier) Handle(ctx context.Context, event events.Event) {
	content := n.format(event)
	if content == "" {
		return
	}

	if _, err := n.messenger.ChannelMessageSend(n.channelID, content, discordgo.WithContext(ctx)); err != nil {
		log.WithFields(log.Fields{
			"eventType": event.Type(),
			"channelID": n.channelID,
			"error":     err,
		}).Error("Failed to post Discord notification")
	}
}

func (n *DiscordNotifier) format(event events.Event) string {
	switch e := event.(type) {
	case events.MatchCreatedEvent:
		return fmt.Sprintf("🎮 **%s** opened a ₹%d match. First to join plays!", e.CreatorName, e.EntryFee)
	case events.MatchJoinedEvent:
		return fmt.Sprintf("⚔️ **%s** vs **%s** for ₹%d each", e.Player1Name, e.Player2Name, e.EntryFee)
	case events.MatchSettledEvent:
		return fmt.Sprintf("🏆 <@%s> won ₹%d (match `%s`)", e.WinnerID, e.Payout, e.MatchID)
	case events.MatchDisputedEvent:
		return fmt.Sprintf("⚠️ Match `%s` is disputed. Funds stay in escrow pending review.", e.MatchID)
	case events.SettlementRecoveredEvent:
		return fmt.Sprintf("🏆 <@%s> won ₹%d (match `%s`, paid after recovery)", e.WinnerID, e.Payout, e.MatchID)
	case events.DisputeReportedEvent:
		return fmt.Sprintf("⚠️ Conflicting result on match `%s`: recorded %q, reported %q", e.MatchID, e.RecordedWinner, e.ReportedWinner)
	}
	return ""
}
