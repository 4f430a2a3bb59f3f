package permissions

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// State describes where a Session is in its load lifecycle.
type State int

const (
	// Unloaded is the construction default; every query denies.
	Unloaded State = iota
	// Loading means a fetch is in flight. Denials are transient.
	Loading
	// Loaded means queries evaluate against the fetched Set.
	Loaded
	// Failed means the last fetch failed definitively. Queries deny.
	Failed
)

func (s State) String() string {
	switch s {
	case Unloaded:
		return "unloaded"
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

type snapshot struct {
	state State
	eval  Evaluator
}

// Session owns the permission set of one authenticated actor for consumers
// that keep it across requests; the HTTP server evaluates per request through
// Middleware instead. A new load replaces the whole set at once; there is no
// partial state.
type Session struct {
	actor   string
	current atomic.Pointer[snapshot]
}

// NewSession returns an Unloaded session for actor.
func NewSession(actor string) *Session {
	s := &Session{actor: actor}
	s.current.Store(&snapshot{state: Unloaded})
	return s
}

// Actor returns the identity the session belongs to.
func (s *Session) Actor() string {
	return s.actor
}

// State reports the current lifecycle state.
func (s *Session) State() State {
	if s == nil {
		return Unloaded
	}
	return s.current.Load().state
}

// Evaluator returns a snapshot evaluator. Outside Loaded it denies everything.
func (s *Session) Evaluator() Evaluator {
	if s == nil {
		return Evaluator{}
	}
	return s.current.Load().eval
}

// Replace installs set and moves to Loaded.
func (s *Session) Replace(set Set) {
	s.current.Store(&snapshot{state: Loaded, eval: NewEvaluator(set)})
}

// Reset drops the set, as on logout.
func (s *Session) Reset() {
	s.current.Store(&snapshot{state: Unloaded})
}

func (s *Session) markLoading() {
	s.current.Store(&snapshot{state: Loading})
}

func (s *Session) markFailed() {
	s.current.Store(&snapshot{state: Failed})
}

// Fetcher retrieves the permission set for an actor.
type Fetcher interface {
	Fetch(ctx context.Context, actor string) (Set, error)
}

// Loader fills Sessions from a Fetcher.
type Loader struct {
	Fetcher Fetcher
	Logger  *slog.Logger
}

// Load fetches the actor's set into sess. A session that already holds a
// set keeps answering from it until the fetch returns, and keeps it when a
// refresh fails. A first load that fails leaves the session in Failed with
// every query denying. The error is returned for the caller's own error
// channel.
func (l Loader) Load(ctx context.Context, sess *Session) error {
	refresh := sess.State() == Loaded
	if !refresh {
		sess.markLoading()
	}
	set, err := l.Fetcher.Fetch(ctx, sess.Actor())
	if err != nil {
		l.logger().Warn("load permissions",
			slog.String("actor", sess.Actor()),
			slog.Bool("refresh", refresh),
			slog.Any("error", err))
		if !refresh {
			sess.markFailed()
		}
		return err
	}
	sess.Replace(set)
	return nil
}

func (l Loader) logger() *slog.Logger {
	if l.Logger != nil {
		return l.Logger
	}
	return slog.Default()
}
