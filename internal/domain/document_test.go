package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateChunk(t *testing.T) {
	valid := &DocumentChunk{
		SourceName: "handbook.md",
		Content:    "Our vacation policy is 25 days.",
		Embedding:  []float32{0.1, 0.2, 0.3},
	}
	assert.NoError(t, ValidateChunk(valid))
}

func TestValidateChunk_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		chunk *DocumentChunk
	}{
		{"nil chunk", nil},
		{"missing source", &DocumentChunk{Content: "text", Embedding: []float32{0.1}}},
		{"empty content", &DocumentChunk{SourceName: "a.txt", Embedding: []float32{0.1}}},
		{"missing embedding", &DocumentChunk{SourceName: "a.txt", Content: "text"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, ValidateChunk(tt.chunk))
		})
	}
}

func TestChunkKey(t *testing.T) {
	whole := &DocumentChunk{SourceName: "guide.txt"}
	assert.Equal(t, "guide.txt", whole.Key())

	split := &DocumentChunk{SourceName: "guide.txt", ChunkLabel: "2"}
	assert.Equal(t, "guide.txt#2", split.Key())
}

func TestScoredChunkSimilarity(t *testing.T) {
	s := ScoredChunk{Distance: 0.25}
	assert.InDelta(t, 0.75, s.Similarity(), 1e-9)
}

func TestInboundEvent_WantsAnswer(t *testing.T) {
	tests := []struct {
		name  string
		event InboundEvent
		want  bool
	}{
		{"app mention", InboundEvent{Kind: EventKindAppMention}, true},
		{"direct message", InboundEvent{Kind: EventKindDirectMessage}, true},
		{"bot mention", InboundEvent{Kind: EventKindAppMention, IsFromBot: true}, false},
		{"bot dm", InboundEvent{Kind: EventKindDirectMessage, IsFromBot: true}, false},
		{"verification", InboundEvent{Kind: EventKindVerification}, false},
		{"unrecognized", InboundEvent{Kind: EventKindUnrecognized}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.event.WantsAnswer())
		})
	}
}

func TestDomainError_Format(t *testing.T) {
	err := NewDomainError(ErrCodeValidation, "question is required")
	assert.Equal(t, "[VALIDATION_ERROR] question is required", err.Error())

	wrapped := NewStoreError("query failed", assert.AnError)
	assert.Contains(t, wrapped.Error(), "STORE_ERROR")
	assert.ErrorIs(t, wrapped, assert.AnError)
}
