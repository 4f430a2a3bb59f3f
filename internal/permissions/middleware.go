package permissions

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
)

// ActorHeader carries the authenticated actor identity set by the gateway.
const ActorHeader = "X-Actor-ID"

type ctxKey struct{}

// ContextWithEvaluator stores the request evaluator.
func ContextWithEvaluator(ctx context.Context, eval Evaluator) context.Context {
	return context.WithValue(ctx, ctxKey{}, eval)
}

// EvaluatorFromContext returns the request evaluator, Unloaded when absent.
func EvaluatorFromContext(ctx context.Context) Evaluator {
	eval, _ := ctx.Value(ctxKey{}).(Evaluator)
	return eval
}

// Middleware gates HTTP handlers on the permission matrix.
type Middleware struct {
	Fetcher Fetcher
	Logger  *slog.Logger
}

// Resolve loads the actor's evaluator into the request context without
// gating. Requests without an actor, or whose set is missing, carry an
// Unloaded evaluator.
func (m Middleware) Resolve(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		eval, err := m.evaluator(r)
		if err != nil {
			m.logError("permissions resolve", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		next.ServeHTTP(w, r.WithContext(ContextWithEvaluator(r.Context(), eval)))
	})
}

// Require ensures the actor holds every listed capability on menuIndex.
func (m Middleware) Require(menuIndex int, caps ...Capability) func(http.Handler) http.Handler {
	if len(caps) == 0 {
		caps = []Capability{View}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			eval, err := m.evaluator(r)
			if err != nil {
				m.logError("permissions require", err)
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}
			for _, c := range caps {
				if !eval.Allows(menuIndex, c) {
					http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
					return
				}
			}
			next.ServeHTTP(w, r.WithContext(ContextWithEvaluator(r.Context(), eval)))
		})
	}
}

func (m Middleware) evaluator(r *http.Request) (Evaluator, error) {
	if eval := EvaluatorFromContext(r.Context()); eval.Loaded() {
		return eval, nil
	}
	actor := strings.TrimSpace(r.Header.Get(ActorHeader))
	if actor == "" || m.Fetcher == nil {
		return Evaluator{}, nil
	}
	set, err := m.Fetcher.Fetch(r.Context(), actor)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Evaluator{}, nil
		}
		return Evaluator{}, err
	}
	return NewEvaluator(set), nil
}

func (m Middleware) logError(msg string, err error) {
	if m.Logger != nil {
		m.Logger.Error(msg, slog.Any("error", err))
	}
}
