package unread

import (
	"context"
	"sync"
	"time"

	"github.com/letusconnect/connect-gateway-go/internal/domain/unread"
	"github.com/letusconnect/connect-gateway-go/internal/pkg/push"
	"golang.org/x/sync/errgroup"
)

// Toaster surfaces terminal failures to the user's UI
type Toaster interface {
	PublishToast(userID, level, message string)
}

// ChangeFunc receives the aggregate result of a fetch cycle. It is only
// invoked after a cycle completes with no error and loading cleared, so a
// stale or error-state count never propagates upstream.
type ChangeFunc func(userID string, state unread.State)

// Watcher maintains the aggregate unread state for a single user. The two
// underlying counts are fetched concurrently; a failure of either fails the
// whole attempt, which is retried with exponential backoff on a timer rather
// than by blocking the caller.
//
// Every cycle carries a generation token. Refetch and Stop bump the
// generation, so a slow response from an abandoned cycle can never overwrite
// fresher state.
type Watcher struct {
	fetcher  unread.CountFetcher
	userID   string
	opts     unread.Options
	onChange ChangeFunc
	toaster  Toaster

	mu      sync.Mutex
	state   unread.State
	gen     uint64
	timer   *time.Timer
	stopped bool

	ctx    context.Context
	cancel context.CancelFunc
}

// NewWatcher creates a watcher for one user. Call Start to begin the first
// fetch cycle.
func NewWatcher(fetcher unread.CountFetcher, userID string, opts unread.Options, onChange ChangeFunc, toaster Toaster) *Watcher {
	ctx, cancel := context.WithCancel(context.Background())
	return &Watcher{
		fetcher:  fetcher,
		userID:   userID,
		opts:     opts.WithDefaults(),
		onChange: onChange,
		toaster:  toaster,
		state:    unread.State{Loading: true},
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start kicks off the initial fetch cycle. A blank user id short-circuits to
// the zero state without issuing any network calls: an unknown user has
// nothing to count and must not be queried on.
func (w *Watcher) Start() {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}

	if w.userID == "" {
		w.state = unread.State{}
		state := w.state
		w.mu.Unlock()
		if w.onChange != nil {
			w.onChange(w.userID, state)
		}
		return
	}

	gen := w.gen
	w.mu.Unlock()

	go w.fetchCycle(gen, 0)
}

// State returns a copy of the current aggregate state
func (w *Watcher) State() unread.State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Refetch restarts the fetch cycle with the attempt counter reset to zero.
// This is the manual recovery path after a terminal failure.
func (w *Watcher) Refetch() {
	w.mu.Lock()
	if w.stopped || w.userID == "" {
		w.mu.Unlock()
		return
	}

	w.gen++
	gen := w.gen
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.state.Loading = true
	w.state.Error = ""
	w.mu.Unlock()

	go w.fetchCycle(gen, 0)
}

// Stop tears the watcher down. No state update can occur afterwards: pending
// timers are cancelled, in-flight fetches are cancelled, and any result that
// still resolves fails the generation check.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	w.stopped = true
	w.gen++
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.mu.Unlock()

	w.cancel()
}

// fetchCycle performs one attempt: both counts in parallel, then commit or
// schedule a retry. retryCount is the number of retries already taken.
func (w *Watcher) fetchCycle(gen uint64, retryCount int) {
	var direct, group int

	g, ctx := errgroup.WithContext(w.ctx)
	g.Go(func() error {
		n, err := w.fetcher.DirectUnreadCount(ctx, w.userID)
		if err != nil {
			return err
		}
		direct = n
		return nil
	})
	g.Go(func() error {
		n, err := w.fetcher.GroupUnreadCount(ctx, w.userID)
		if err != nil {
			return err
		}
		group = n
		return nil
	})

	if err := g.Wait(); err != nil {
		w.handleFailure(gen, retryCount, err)
		return
	}

	w.mu.Lock()
	if w.stopped || gen != w.gen {
		w.mu.Unlock()
		return
	}
	w.state = unread.State{
		DirectCount: direct,
		GroupCount:  group,
		TotalCount:  direct + group,
	}
	state := w.state
	w.mu.Unlock()

	if w.onChange != nil {
		w.onChange(w.userID, state)
	}
}

// handleFailure schedules the next retry, or commits the terminal failure
// once the retry budget is spent.
func (w *Watcher) handleFailure(gen uint64, retryCount int, cause error) {
	w.mu.Lock()
	if w.stopped || gen != w.gen {
		w.mu.Unlock()
		return
	}

	if retryCount < w.opts.MaxRetries {
		delay := w.opts.RetryDelay * (1 << retryCount)
		w.timer = time.AfterFunc(delay, func() {
			w.mu.Lock()
			live := !w.stopped && gen == w.gen
			w.mu.Unlock()
			if live {
				w.fetchCycle(gen, retryCount+1)
			}
		})
		w.mu.Unlock()
		return
	}

	w.state = unread.State{Error: cause.Error()}
	w.mu.Unlock()

	if w.toaster != nil {
		w.toaster.PublishToast(w.userID, push.LevelError, "Failed to load unread counts: "+cause.Error())
	}
}
