package slack

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/docsbot-io/docsbot/internal/domain"
	"github.com/docsbot-io/docsbot/internal/service"
	"github.com/docsbot-io/docsbot/internal/telemetry"
)

const fallbackMessage = "Sorry, I'm having trouble answering right now. Please try again later."

// processTimeout bounds one asynchronous answer flow; the webhook response
// itself is never held up by it.
const processTimeout = 2 * time.Minute

var mentionMarkup = regexp.MustCompile(`<@[^>]+>`)

// Answerer is the question-answering contract the dispatcher drives.
type Answerer interface {
	Answer(ctx context.Context, question string) (*service.Answer, error)
}

// Dispatcher receives Slack event webhooks. Verification challenges are
// answered synchronously; everything else is acknowledged immediately and
// processed in a detached goroutine, because Slack retries any webhook that
// does not respond within a few seconds and a retried event means a
// duplicated answer.
type Dispatcher struct {
	answerer Answerer
	sender   Sender
}

func NewDispatcher(answerer Answerer, sender Sender) *Dispatcher {
	return &Dispatcher{answerer: answerer, sender: sender}
}

// HandleEvent is the POST /slack/events handler.
func (d *Dispatcher) HandleEvent(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}

	event, err := DecodeEvent(body)
	if err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	if event.Kind == domain.EventKindVerification {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"challenge": event.Challenge})
		return
	}

	// Acknowledge before any retrieval or completion work starts.
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))

	if !event.WantsAnswer() {
		return
	}

	go d.process(event)
}

// process runs one answer flow detached from the webhook request. The HTTP
// request context is already done by the time this runs, so a fresh context
// carries the timeout.
func (d *Dispatcher) process(event *domain.InboundEvent) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("Recovered from panic while processing event: %v", rec)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), processTimeout)
	defer cancel()

	question := strings.TrimSpace(mentionMarkup.ReplaceAllString(event.RawText, ""))
	if question == "" {
		log.Printf("No question extracted from event in channel %s", event.ChannelID)
		return
	}

	answer, err := d.answerer.Answer(ctx, question)
	if err != nil {
		log.Printf("Failed to answer question in channel %s: %v", event.ChannelID, err)
		telemetry.CaptureError(ctx, err)
		d.notifyFailure(ctx, event.ChannelID)
		return
	}

	if err := d.sender.SendMessage(ctx, event.ChannelID, answer.Text); err != nil {
		log.Printf("Failed to deliver answer to channel %s: %v", event.ChannelID, err)
		telemetry.CaptureError(ctx, err)
		d.notifyFailure(ctx, event.ChannelID)
	}
}

// notifyFailure makes exactly one best-effort attempt to tell the channel
// something went wrong. Its own failure is logged only; there is no one left
// to report to.
func (d *Dispatcher) notifyFailure(ctx context.Context, channelID string) {
	if err := d.sender.SendMessage(ctx, channelID, fallbackMessage); err != nil {
		log.Printf("Failed to send failure notification to channel %s: %v", channelID, err)
	}
}
