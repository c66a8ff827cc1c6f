package appointment

import (
	"errors"

	"github.com/hackgods/smart-scheduler/internal/catalog"
)

var (
	ErrInvalidArgument     = errors.New("invalid argument")
	ErrValidation          = errors.New("validation failed")
	ErrServiceNotFound     = catalog.ErrServiceNotFound
	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrConflict            = errors.New("time slot not available")
)
