// Package liveclient contains the client-side reconciliation for the
// polling model: it re-fetches the session detail on a fixed interval,
// diffs it against the last rendered state, and emits typed events. The
// countdown is always seeded and resynced from the server's question start
// time; the server alone refuses late answers.
package liveclient

import (
	"context"
	"time"

	"live-quiz-service/internal/app"
)

// SessionFetcher is how the watcher reads session state, typically an HTTP
// client for GET /live-sessions/:code.
type SessionFetcher interface {
	SessionDetail(ctx context.Context, code string) (app.SessionDetail, error)
}

type EventKind string

const (
	// QuestionOpened fires when a question becomes answerable, including a
	// re-open of the same index after the instructor closed it.
	QuestionOpened EventKind = "questionOpened"
	// TimerSync fires on every poll while a question is open so consumers
	// can correct local countdown drift.
	TimerSync EventKind = "timerSync"
	// QuestionClosed fires when the open question stops accepting answers.
	QuestionClosed EventKind = "questionClosed"
	// SessionEnded is terminal; the event channel closes after it.
	SessionEnded EventKind = "sessionEnded"
)

// Event is one observed state change.
type Event struct {
	Kind             EventKind
	QuestionIndex    int
	Question         *app.QuestionView
	RemainingSeconds int
}

// Watcher polls a session and reconciles the stream of snapshots into
// events. All state is held per Watch call; nothing is package-global.
type Watcher struct {
	fetcher  SessionFetcher
	interval time.Duration
	now      func() time.Time
}

func NewWatcher(fetcher SessionFetcher, interval time.Duration) *Watcher {
	return &Watcher{fetcher: fetcher, interval: interval, now: time.Now}
}

// WithClock overrides the watcher clock. Test-only.
func (w *Watcher) WithClock(now func() time.Time) *Watcher {
	w.now = now
	return w
}

// Watch starts polling the session. The returned stop function cancels the
// loop; the channel closes after SessionEnded or stop.
func (w *Watcher) Watch(ctx context.Context, code string) (<-chan Event, func()) {
	ctx, cancel := context.WithCancel(ctx)
	events := make(chan Event, 8)

	go func() {
		defer close(events)
		defer cancel()

		var (
			open      bool
			lastIndex int
			lastStart time.Time
		)

		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		for {
			detail, err := w.fetcher.SessionDetail(ctx, code)
			if err == nil {
				if !detail.IsActive {
					w.send(ctx, events, Event{Kind: SessionEnded})
					return
				}
				switch {
				case detail.QuestionStarted && detail.CurrentQuestion != nil:
					startedAt := time.Time{}
					if detail.QuestionStartTime != nil {
						startedAt = *detail.QuestionStartTime
					}
					remaining := RemainingSeconds(detail.CurrentQuestion.TimeLimit, startedAt, w.now())
					sameQuestion := open && lastIndex == detail.CurrentQuestionIndex && lastStart.Equal(startedAt)
					if sameQuestion {
						w.send(ctx, events, Event{
							Kind:             TimerSync,
							QuestionIndex:    detail.CurrentQuestionIndex,
							RemainingSeconds: remaining,
						})
					} else {
						open = true
						lastIndex = detail.CurrentQuestionIndex
						lastStart = startedAt
						w.send(ctx, events, Event{
							Kind:             QuestionOpened,
							QuestionIndex:    detail.CurrentQuestionIndex,
							Question:         detail.CurrentQuestion,
							RemainingSeconds: remaining,
						})
					}
				case open:
					open = false
					w.send(ctx, events, Event{Kind: QuestionClosed, QuestionIndex: lastIndex})
				}
			}

			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()

	return events, cancel
}

func (w *Watcher) send(ctx context.Context, events chan<- Event, event Event) {
	select {
	case events <- event:
	case <-ctx.Done():
	}
}

// RemainingSeconds derives the countdown from the server's start time:
// timeLimit minus elapsed, never below zero. A zero start time means the
// question just opened and the full limit applies.
func RemainingSeconds(timeLimit int, startedAt, now time.Time) int {
	if startedAt.IsZero() {
		return timeLimit
	}
	elapsed := int(now.Sub(startedAt) / time.Second)
	if elapsed >= timeLimit {
		return 0
	}
	return timeLimit - elapsed
}
