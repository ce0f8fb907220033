package usecase

import (
	"errors"

	"github.com/jhoicas/Obras-api/internal/domain"
)

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}
