package slack

import (
	"encoding/json"
	"fmt"

	"github.com/docsbot-io/docsbot/internal/domain"
)

// eventEnvelope is the outer shape of every events-API payload.
type eventEnvelope struct {
	Type      string       `json:"type"`
	Challenge string       `json:"challenge,omitempty"`
	Event     *insideEvent `json:"event,omitempty"`
}

type insideEvent struct {
	Type        string `json:"type"`
	ChannelType string `json:"channel_type,omitempty"`
	Channel     string `json:"channel"`
	Text        string `json:"text"`
	BotID       string `json:"bot_id,omitempty"`
}

// DecodeEvent classifies a raw webhook body into one InboundEvent. Unknown
// payload shapes decode to EventKindUnrecognized rather than an error; the
// dispatcher acknowledges them and does nothing.
func DecodeEvent(body []byte) (*domain.InboundEvent, error) {
	var envelope eventEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("failed to parse event payload: %w", err)
	}

	switch envelope.Type {
	case "url_verification":
		return &domain.InboundEvent{
			Kind:      domain.EventKindVerification,
			Challenge: envelope.Challenge,
		}, nil

	case "event_callback":
		if envelope.Event == nil {
			return &domain.InboundEvent{Kind: domain.EventKindUnrecognized}, nil
		}

		kind := domain.EventKindUnrecognized
		switch {
		case envelope.Event.Type == "app_mention":
			kind = domain.EventKindAppMention
		case envelope.Event.Type == "message" && envelope.Event.ChannelType == "im":
			kind = domain.EventKindDirectMessage
		}

		return &domain.InboundEvent{
			Kind:      kind,
			ChannelID: envelope.Event.Channel,
			RawText:   envelope.Event.Text,
			IsFromBot: envelope.Event.BotID != "",
		}, nil
	}

	return &domain.InboundEvent{Kind: domain.EventKindUnrecognized}, nil
}
