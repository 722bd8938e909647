// Package notify delivers transient, dismissible notifications about editing
// sessions to interested subscribers.
//
// A Notification is addressed to a topic, normally a session id. Observers
// subscribe either to every notification or to one topic. The notifier also
// keeps the most recent notifications of each topic until they are dismissed,
// so a client that connects late can still show them.
package notify

import (
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Kind classifies a notification.
type Kind string

const (
	// KindAnalysisFailed reports an unreachable or failing analyzer.
	KindAnalysisFailed Kind = "analysis_failed"
	// KindContractError reports a malformed analyzer response.
	KindContractError Kind = "contract_error"
	// KindStaleSuggestion reports an apply request for an outdated version.
	KindStaleSuggestion Kind = "stale_suggestion"
	// KindPersistenceFailed reports a failed document save.
	KindPersistenceFailed Kind = "persistence_failed"
	// KindSuggestionsUpdated reports a newly published suggestion set.
	KindSuggestionsUpdated Kind = "suggestions_updated"
)

// DefaultHistory is the number of notifications retained per topic.
const DefaultHistory = 20

// Notification is a single user-facing message.
type Notification struct {
	ID      uuid.UUID `json:"id"`
	Topic   string    `json:"topic"`
	Kind    Kind      `json:"kind"`
	Message string    `json:"message"`
	Version int64     `json:"version,omitempty"`
	Time    time.Time `json:"time"`
}

// Observer is called for each delivered notification.
type Observer func(n Notification)

// Subscription represents an active observer subscription.
type Subscription struct {
	id       uint64
	topic    string
	notifier *Notifier
}

// Unsubscribe removes this subscription.
func (s *Subscription) Unsubscribe() {
	if s.notifier != nil {
		s.notifier.unsubscribe(s.id)
	}
}

// Notifier manages notification subscriptions.
type Notifier struct {
	mu sync.RWMutex

	// Global observers that receive all notifications
	globalObservers map[uint64]Observer

	// Topic-specific observers
	topicObservers map[string]map[uint64]Observer

	// Undismissed notifications per topic, oldest first
	recent  map[string][]Notification
	history int

	nextID uint64

	async  bool
	buffer chan Notification
	done   chan struct{}
	wg     sync.WaitGroup
	closed bool

	now func() time.Time
}

// Option configures a Notifier.
type Option func(*Notifier)

// WithAsync enables asynchronous delivery through a buffer of bufferSize.
func WithAsync(bufferSize int) Option {
	return func(n *Notifier) {
		if bufferSize > 0 {
			n.async = true
			n.buffer = make(chan Notification, bufferSize)
		}
	}
}

// WithHistory sets how many notifications are retained per topic.
// Zero disables retention.
func WithHistory(size int) Option {
	return func(n *Notifier) {
		if size >= 0 {
			n.history = size
		}
	}
}

// New creates a new Notifier.
func New(opts ...Option) *Notifier {
	n := &Notifier{
		globalObservers: make(map[uint64]Observer),
		topicObservers:  make(map[string]map[uint64]Observer),
		recent:          make(map[string][]Notification),
		history:         DefaultHistory,
		done:            make(chan struct{}),
		now:             time.Now,
	}

	for _, opt := range opts {
		opt(n)
	}

	if n.async {
		n.wg.Add(1)
		go n.processAsync()
	}

	return n
}

// Subscribe registers an observer for all notifications.
func (n *Notifier) Subscribe(observer Observer) *Subscription {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.nextID
	n.nextID++
	n.globalObservers[id] = observer

	return &Subscription{id: id, notifier: n}
}

// SubscribeTopic registers an observer for notifications addressed to topic.
func (n *Notifier) SubscribeTopic(topic string, observer Observer) *Subscription {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.nextID
	n.nextID++

	if n.topicObservers[topic] == nil {
		n.topicObservers[topic] = make(map[uint64]Observer)
	}
	n.topicObservers[topic][id] = observer

	return &Subscription{id: id, topic: topic, notifier: n}
}

// Notify delivers a notification. A zero ID or Time is filled in.
func (n *Notifier) Notify(note Notification) {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return
	}
	if note.ID == uuid.Nil {
		note.ID = uuid.New()
	}
	if note.Time.IsZero() {
		note.Time = n.now()
	}
	n.retainLocked(note)
	n.mu.Unlock()

	if n.async {
		select {
		case n.buffer <- note:
		case <-n.done:
		}
		return
	}

	n.deliver(note)
}

// Post is a convenience wrapper around Notify.
func (n *Notifier) Post(topic string, kind Kind, message string) {
	n.Notify(Notification{Topic: topic, Kind: kind, Message: message})
}

// Recent returns the undismissed notifications of topic, oldest first.
func (n *Notifier) Recent(topic string) []Notification {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return slices.Clone(n.recent[topic])
}

// Dismiss removes a retained notification. It reports whether it was found.
func (n *Notifier) Dismiss(topic string, id uuid.UUID) bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	list := n.recent[topic]
	i := slices.IndexFunc(list, func(note Notification) bool { return note.ID == id })
	if i < 0 {
		return false
	}
	n.recent[topic] = slices.Delete(slices.Clone(list), i, i+1)
	return true
}

// Forget drops all retained notifications of topic.
func (n *Notifier) Forget(topic string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.recent, topic)
}

// Close shuts down the notifier. It is safe to call Close multiple times.
func (n *Notifier) Close() {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return
	}
	n.closed = true
	n.mu.Unlock()

	close(n.done)
	n.wg.Wait()
}

func (n *Notifier) retainLocked(note Notification) {
	if n.history == 0 || note.Topic == "" {
		return
	}
	list := append(n.recent[note.Topic], note)
	if len(list) > n.history {
		list = slices.Clone(list[len(list)-n.history:])
	}
	n.recent[note.Topic] = list
}

// unsubscribe removes an observer by ID.
func (n *Notifier) unsubscribe(id uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()

	delete(n.globalObservers, id)

	for topic, observers := range n.topicObservers {
		delete(observers, id)
		if len(observers) == 0 {
			delete(n.topicObservers, topic)
		}
	}
}

// deliver sends a notification to all matching observers.
func (n *Notifier) deliver(note Notification) {
	n.mu.RLock()

	var observers []Observer
	for _, obs := range n.globalObservers {
		observers = append(observers, obs)
	}
	for _, obs := range n.topicObservers[note.Topic] {
		observers = append(observers, obs)
	}

	n.mu.RUnlock()

	// Call observers outside the lock
	for _, obs := range observers {
		obs(note)
	}
}

// processAsync handles asynchronous delivery.
func (n *Notifier) processAsync() {
	defer n.wg.Done()

	for {
		select {
		case note := <-n.buffer:
			n.deliver(note)
		case <-n.done:
			// Drain remaining buffered notifications
			for {
				select {
				case note := <-n.buffer:
					n.deliver(note)
				default:
					return
				}
			}
		}
	}
}
