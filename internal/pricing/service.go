package pricing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ServiceConfig carries the pricing policy and display locale.
type ServiceConfig struct {
	ClampNegative bool
	Locale        string
}

// Service prices single lines and whole price tables.
type Service struct {
	repo       Repository
	store      *SimulationStore
	calculator Calculator
	formatter  Formatter
	metrics    *Metrics
	clock      func() time.Time
}

// NewService wires a Service. metrics may be nil.
func NewService(repo Repository, store *SimulationStore, cfg ServiceConfig, metrics *Metrics) *Service {
	return &Service{
		repo:       repo,
		store:      store,
		calculator: Calculator{ClampNegative: cfg.ClampNegative},
		formatter:  NewFormatter(cfg.Locale),
		metrics:    metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Quote prices one line. It never fails.
func (s *Service) Quote(req QuoteRequest) Quote {
	s.metrics.quoted()
	net := s.calculator.NetPrice(req.GrossPrice, req.PromoPrice, req.Discounts)
	return Quote{
		BasePrice:  BasePrice(req.GrossPrice, req.PromoPrice),
		NetPrice:   net,
		NetDisplay: s.formatter.Format(net),
	}
}

// Open starts a simulation over tableID with every discount slot empty.
func (s *Service) Open(ctx context.Context, tableID int64) (Simulation, error) {
	if _, err := s.repo.GetTable(ctx, tableID); err != nil {
		return Simulation{}, err
	}
	now := s.clock()
	sim := Simulation{ID: uuid.New(), TableID: tableID, CreatedAt: now, UpdatedAt: now}
	if err := s.store.Save(ctx, sim); err != nil {
		return Simulation{}, fmt.Errorf("pricing: save simulation: %w", err)
	}
	s.metrics.simulation("opened")
	return sim, nil
}

// SetDiscount stores raw input in one slot of a simulation.
func (s *Service) SetDiscount(ctx context.Context, id uuid.UUID, slot int, value string) (Simulation, error) {
	sim, err := s.store.Get(ctx, id)
	if err != nil {
		return Simulation{}, err
	}
	if err := sim.Discounts.Set(slot, value); err != nil {
		return Simulation{}, err
	}
	sim.UpdatedAt = s.clock()
	if err := s.store.Save(ctx, sim); err != nil {
		return Simulation{}, fmt.Errorf("pricing: save simulation: %w", err)
	}
	return sim, nil
}

// Evaluate prices every item of the simulation's table.
func (s *Service) Evaluate(ctx context.Context, id uuid.UUID) (Evaluation, error) {
	sim, err := s.store.Get(ctx, id)
	if err != nil {
		return Evaluation{}, err
	}
	table, err := s.repo.GetTable(ctx, sim.TableID)
	if err != nil {
		return Evaluation{}, err
	}
	discounts := sim.Discounts.Values()
	lines := make([]Line, 0, len(table.Items))
	for _, item := range table.Items {
		net := s.calculator.NetPrice(item.GrossPrice, item.PromoPrice, discounts)
		lines = append(lines, Line{
			Item:         item,
			BasePrice:    BasePrice(item.GrossPrice, item.PromoPrice),
			NetPrice:     net,
			NetDisplay:   s.formatter.Format(net),
			PromoApplied: item.PromoPrice != nil && *item.PromoPrice > 0,
		})
	}
	return Evaluation{Simulation: sim, Table: table.Name, Lines: lines}, nil
}

// Close discards a simulation.
func (s *Service) Close(ctx context.Context, id uuid.UUID) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.metrics.simulation("closed")
	return nil
}
