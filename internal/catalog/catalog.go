package catalog

import (
	"errors"
	"fmt"
)

var (
	ErrServiceNotFound = errors.New("service not found")
	ErrInvalidService  = errors.New("invalid service definition")
)

// Service is a bookable service type.
type Service struct {
	ID              string
	Name            string
	DurationMinutes int
	Price           float64
}

// Catalog is a read-only registry of services keyed by ID.
// It is safe for concurrent use because nothing mutates it after New returns.
type Catalog struct {
	order []string
	byID  map[string]Service
}

func New(services ...Service) (*Catalog, error) {
	c := &Catalog{
		order: make([]string, 0, len(services)),
		byID:  make(map[string]Service, len(services)),
	}

	for _, s := range services {
		switch {
		case s.ID == "":
			return nil, fmt.Errorf("%w: empty id", ErrInvalidService)
		case s.DurationMinutes <= 0:
			return nil, fmt.Errorf("%w: %s has non-positive duration", ErrInvalidService, s.ID)
		case s.Price < 0:
			return nil, fmt.Errorf("%w: %s has negative price", ErrInvalidService, s.ID)
		}
		if _, dup := c.byID[s.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate id %s", ErrInvalidService, s.ID)
		}
		c.order = append(c.order, s.ID)
		c.byID[s.ID] = s
	}

	return c, nil
}

// Default returns the three services offered out of the box.
func Default() *Catalog {
	c, err := New(
		Service{ID: "consultation", Name: "Initial Consultation", DurationMinutes: 60, Price: 100},
		Service{ID: "followup", Name: "Follow-up Visit", DurationMinutes: 30, Price: 50},
		Service{ID: "treatment", Name: "Treatment Session", DurationMinutes: 90, Price: 150},
	)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Catalog) Lookup(id string) (Service, error) {
	s, ok := c.byID[id]
	if !ok {
		return Service{}, fmt.Errorf("%w: %s", ErrServiceNotFound, id)
	}
	return s, nil
}

// List returns every service in insertion order.
func (c *Catalog) List() []Service {
	out := make([]Service, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.byID[id])
	}
	return out
}
