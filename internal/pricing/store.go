package pricing

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const simulationKeyPrefix = "pricing:simulation:"

// SimulationStore keeps pricing sessions in Redis. Sessions expire after
// ttl of inactivity; nothing is written to the database.
type SimulationStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSimulationStore builds a store. A zero ttl falls back to 2h.
func NewSimulationStore(client *redis.Client, ttl time.Duration) *SimulationStore {
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	return &SimulationStore{client: client, ttl: ttl}
}

// Save writes sim and refreshes its expiry.
func (s *SimulationStore) Save(ctx context.Context, sim Simulation) error {
	raw, err := json.Marshal(sim)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, simulationKey(sim.ID), raw, s.ttl).Err()
}

// Get loads a simulation.
func (s *SimulationStore) Get(ctx context.Context, id uuid.UUID) (Simulation, error) {
	raw, err := s.client.Get(ctx, simulationKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Simulation{}, ErrSimulationNotFound
	}
	if err != nil {
		return Simulation{}, err
	}
	var sim Simulation
	if err := json.Unmarshal(raw, &sim); err != nil {
		return Simulation{}, err
	}
	return sim, nil
}

// Delete discards a simulation. Deleting a missing one reports ErrSimulationNotFound.
func (s *SimulationStore) Delete(ctx context.Context, id uuid.UUID) error {
	n, err := s.client.Del(ctx, simulationKey(id)).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrSimulationNotFound
	}
	return nil
}

func simulationKey(id uuid.UUID) string {
	return simulationKeyPrefix + id.String()
}
