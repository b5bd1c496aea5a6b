// Package delivery keeps one live change-feed subscription per admin session
// and replays its events, in arrival order, into a sink such as the client
// notification state or a websocket writer.
package delivery

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/Pinoccchio/InCloud-WEB-sub003/internal/changefeed"
)

type ConnState string

const (
	StateConnecting ConnState = "CONNECTING"
	StateSubscribed ConnState = "SUBSCRIBED"
	StateClosed     ConnState = "CLOSED"
	StateError      ConnState = "ERROR"
)

const (
	// ResubscribeDelay applies after an established subscription drops.
	ResubscribeDelay = 5 * time.Second
	// SetupRetryDelay applies when subscription setup itself fails.
	SetupRetryDelay = 10 * time.Second
)

type EventSink interface {
	HandleEvent(event changefeed.Event)
}

// ChannelManager owns the subscription for one (admin, branch) session. It
// retries forever while the session lives: a dropped subscription is retried
// after ResubscribeDelay, a failed setup after SetupRetryDelay. Close tears
// the subscription and any pending retry timer down synchronously.
type ChannelManager struct {
	AdminID  string
	BranchID string

	// Retry delays; overridable before Start.
	ResubscribeAfter time.Duration
	RetrySetupAfter  time.Duration

	feed changefeed.Feed
	sink EventSink

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	mu    sync.RWMutex
	state ConnState
}

func NewChannelManager(feed changefeed.Feed, adminID, branchID string, sink EventSink) *ChannelManager {
	ctx, cancel := context.WithCancel(context.Background())

	return &ChannelManager{
		AdminID:          adminID,
		BranchID:         branchID,
		ResubscribeAfter: ResubscribeDelay,
		RetrySetupAfter:  SetupRetryDelay,
		feed:             feed,
		sink:             sink,
		ctx:              ctx,
		cancel:           cancel,
		done:             make(chan struct{}),
		state:            StateConnecting,
	}
}

// Start launches the subscription loop. Call at session start, once.
func (m *ChannelManager) Start() {
	go m.run()
}

func (m *ChannelManager) run() {
	defer close(m.done)

	for {
		m.setState(StateConnecting)

		sub, err := m.feed.Subscribe(m.ctx, m.BranchID)

		if err != nil {
			if m.ctx.Err() != nil {
				m.setState(StateClosed)
				return
			}

			log.Printf("Subscription setup failed for admin %s on branch %s: %v",
				m.AdminID, m.BranchID, err)
			m.setState(StateError)

			if !m.wait(m.RetrySetupAfter) {
				return
			}
			continue
		}

		m.setState(StateSubscribed)

		// Events arrive one at a time; the sink sees them in store order.
		for event := range sub.Events() {
			m.sink.HandleEvent(event)
		}

		sub.Close()

		if m.ctx.Err() != nil {
			m.setState(StateClosed)
			return
		}

		if err := sub.Err(); err != nil {
			log.Printf("Subscription dropped for admin %s on branch %s: %v",
				m.AdminID, m.BranchID, err)
			m.setState(StateError)
		} else {
			m.setState(StateClosed)
		}

		if !m.wait(m.ResubscribeAfter) {
			return
		}
	}
}

// wait blocks for the delay or until the session ends; false means stop.
func (m *ChannelManager) wait(delay time.Duration) bool {
	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-m.ctx.Done():
		m.setState(StateClosed)
		return false
	case <-timer.C:
		return true
	}
}

// Close ends the session: the subscription and any pending retry timer are
// released before Close returns.
func (m *ChannelManager) Close() {
	m.cancel()
	<-m.done
}

func (m *ChannelManager) setState(state ConnState) {
	m.mu.Lock()
	m.state = state
	m.mu.Unlock()
}

func (m *ChannelManager) State() ConnState {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.state
}

// IsConnected is a UI/diagnostic observable only; admin actions do not gate
// on it.
func (m *ChannelManager) IsConnected() bool {
	return m.State() == StateSubscribed
}
