package domain

// EventKind classifies an inbound webhook payload.
type EventKind string

const (
	EventKindVerification  EventKind = "verification"
	EventKindAppMention    EventKind = "app_mention"
	EventKindDirectMessage EventKind = "direct_message"
	EventKindUnrecognized  EventKind = "unrecognized"
)

// InboundEvent is the decoded form of one webhook payload. It lives for the
// duration of a single dispatch and is never shared across tasks.
type InboundEvent struct {
	Kind      EventKind
	Challenge string // set for verification events only
	ChannelID string
	RawText   string
	IsFromBot bool
}

// WantsAnswer reports whether the event should flow through retrieval and
// answering. Bot-originated events are excluded to avoid the bot answering
// itself in shared channels.
func (e *InboundEvent) WantsAnswer() bool {
	switch e.Kind {
	case EventKindAppMention, EventKindDirectMessage:
		return !e.IsFromBot
	}
	return false
}
