// Package slots owns availability slots. Reservation exclusivity lives
// in the storage layer (conditional update), so multiple process
// instances can race on the same slot safely.
package slots

import (
	"context"
	"errors"
	"time"

	"github.com/Sonusk4/consult-sub001/internal/models"
	repo "github.com/Sonusk4/consult-sub001/internal/repository"
)

type Registry struct {
	r repo.Slots
}

func NewRegistry(r repo.Slots) *Registry { return &Registry{r: r} }

func (g *Registry) Create(ctx context.Context, consultantID string, day time.Time, timeOfDay string) (models.AvailabilitySlot, error) {
	if _, err := time.Parse("15:04", timeOfDay); err != nil {
		return models.AvailabilitySlot{}, errors.New("time_of_day must be HH:MM")
	}
	return g.r.Create(ctx, models.AvailabilitySlot{
		ConsultantID: consultantID,
		Day:          day,
		TimeOfDay:    timeOfDay,
	})
}

func (g *Registry) List(ctx context.Context, consultantID string, day time.Time) ([]models.AvailabilitySlot, error) {
	return g.r.ListByConsultant(ctx, consultantID, day)
}

func (g *Registry) Get(ctx context.Context, id string) (models.AvailabilitySlot, error) {
	return g.r.GetByID(ctx, id)
}

func (g *Registry) Reserve(ctx context.Context, id string) error {
	return g.r.Reserve(ctx, id)
}

func (g *Registry) Release(ctx context.Context, id string) error {
	return g.r.Release(ctx, id)
}

// Delete removes an unreserved slot owned by actorID.
func (g *Registry) Delete(ctx context.Context, actorID, id string) error {
	s, err := g.r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if s.ConsultantID != actorID {
		return models.ErrForbidden
	}
	return g.r.Delete(ctx, id)
}
