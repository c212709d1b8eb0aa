package slack

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docsbot-io/docsbot/internal/domain"
)

func TestDecodeEvent(t *testing.T) {
	tests := []struct {
		name string
		body string
		want domain.InboundEvent
	}{
		{
			name: "url verification",
			body: `{"type":"url_verification","challenge":"abc123"}`,
			want: domain.InboundEvent{Kind: domain.EventKindVerification, Challenge: "abc123"},
		},
		{
			name: "app mention",
			body: `{"type":"event_callback","event":{"type":"app_mention","channel":"C123","text":"<@U999> how do I deploy?"}}`,
			want: domain.InboundEvent{Kind: domain.EventKindAppMention, ChannelID: "C123", RawText: "<@U999> how do I deploy?"},
		},
		{
			name: "direct message",
			body: `{"type":"event_callback","event":{"type":"message","channel_type":"im","channel":"D123","text":"hello"}}`,
			want: domain.InboundEvent{Kind: domain.EventKindDirectMessage, ChannelID: "D123", RawText: "hello"},
		},
		{
			name: "bot message flagged",
			body: `{"type":"event_callback","event":{"type":"message","channel_type":"im","channel":"D123","text":"echo","bot_id":"B42"}}`,
			want: domain.InboundEvent{Kind: domain.EventKindDirectMessage, ChannelID: "D123", RawText: "echo", IsFromBot: true},
		},
		{
			name: "channel message is not a direct message",
			body: `{"type":"event_callback","event":{"type":"message","channel_type":"channel","channel":"C123","text":"chatter"}}`,
			want: domain.InboundEvent{Kind: domain.EventKindUnrecognized, ChannelID: "C123", RawText: "chatter"},
		},
		{
			name: "unknown event type",
			body: `{"type":"event_callback","event":{"type":"reaction_added","channel":"C123"}}`,
			want: domain.InboundEvent{Kind: domain.EventKindUnrecognized, ChannelID: "C123"},
		},
		{
			name: "event callback without event",
			body: `{"type":"event_callback"}`,
			want: domain.InboundEvent{Kind: domain.EventKindUnrecognized},
		},
		{
			name: "unknown envelope type",
			body: `{"type":"app_rate_limited"}`,
			want: domain.InboundEvent{Kind: domain.EventKindUnrecognized},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event, err := DecodeEvent([]byte(tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.want, *event)
		})
	}
}

func TestDecodeEvent_MalformedJSON(t *testing.T) {
	_, err := DecodeEvent([]byte("{not json"))
	assert.Error(t, err)
}
