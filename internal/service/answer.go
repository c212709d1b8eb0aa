package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/docsbot-io/docsbot/internal/domain"
	"github.com/docsbot-io/docsbot/internal/openai"
)

const (
	groundedSystemPrompt = "Answer questions using only the provided documents. " +
		"Always mention which document contains the information. " +
		"If the answer isn't in any document, say so explicitly instead of guessing."

	contextFreeSystemPrompt = "No relevant documents were found for this question. " +
		"Tell the user you could not find anything about their question in the " +
		"indexed documentation, and answer from general knowledge only if you " +
		"clearly label it as such."
)

// DocumentFinder is the retrieval contract the composer depends on.
type DocumentFinder interface {
	FindRelevant(ctx context.Context, question string, maxDocuments int, similarityThreshold float64) []domain.RetrievedDocument
}

// Completer produces an answer from a chat transcript.
type Completer interface {
	Complete(ctx context.Context, messages []openai.Message) (string, error)
}

// Answer is one composed response, citations already attached.
type Answer struct {
	Text            string
	HasRelevantDocs bool
	Documents       []domain.RetrievedDocument
}

// Composer turns a question into a grounded answer. Retrieval failures
// degrade to a context-free answer; a completion failure is terminal for the
// request and is never retried here.
type Composer struct {
	finder              DocumentFinder
	completer           Completer
	maxDocuments        int
	similarityThreshold float64
}

func NewComposer(finder DocumentFinder, completer Completer, maxDocuments int, similarityThreshold float64) *Composer {
	if maxDocuments <= 0 {
		maxDocuments = 3
	}
	return &Composer{
		finder:              finder,
		completer:           completer,
		maxDocuments:        maxDocuments,
		similarityThreshold: similarityThreshold,
	}
}

// Answer retrieves context for the question and asks the completion model.
// Retrieval runs twice when the configured threshold yields nothing: once
// more with the threshold fully relaxed, so a small corpus still produces a
// grounded answer before we give up on context.
func (c *Composer) Answer(ctx context.Context, question string) (*Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, domain.ErrEmptyQuestion
	}

	docs := c.finder.FindRelevant(ctx, question, c.maxDocuments, c.similarityThreshold)
	if len(docs) == 0 {
		docs = c.finder.FindRelevant(ctx, question, c.maxDocuments, 0)
	}

	messages := c.buildMessages(question, docs)
	text, err := c.completer.Complete(ctx, messages)
	if err != nil {
		return nil, domain.NewProviderError("completion failed", err)
	}

	if len(docs) > 0 {
		text += citationBlock(docs)
	}

	return &Answer{
		Text:            text,
		HasRelevantDocs: len(docs) > 0,
		Documents:       docs,
	}, nil
}

func (c *Composer) buildMessages(question string, docs []domain.RetrievedDocument) []openai.Message {
	if len(docs) == 0 {
		return []openai.Message{
			{Role: openai.RoleSystem, Content: contextFreeSystemPrompt},
			{Role: openai.RoleUser, Content: "Question: " + question},
		}
	}

	var sb strings.Builder
	for _, doc := range docs {
		fmt.Fprintf(&sb, "\n--- %s (Similarity: %.3f) ---\n%s\n", doc.SourceName, doc.BestSimilarity, doc.FullContent)
	}

	return []openai.Message{
		{Role: openai.RoleSystem, Content: groundedSystemPrompt},
		{Role: openai.RoleUser, Content: fmt.Sprintf("Documents: %s\n\nQuestion: %s", sb.String(), question)},
	}
}

// citationBlock is appended locally so the citation format does not depend on
// model compliance.
func citationBlock(docs []domain.RetrievedDocument) string {
	var sb strings.Builder
	sb.WriteString("\n\nSources:")
	for _, doc := range docs {
		if doc.ExternalLink != "" {
			fmt.Fprintf(&sb, "\n• %s (%s)", doc.SourceName, doc.ExternalLink)
		} else {
			fmt.Fprintf(&sb, "\n• %s", doc.SourceName)
		}
	}
	return sb.String()
}
