package query

import (
	"fmt"

	"github.com/kirinyoku/deskgo/internal/domain"
)

var (
	ErrSeatNotFound  = fmt.Errorf("seat not found: %w", domain.ErrNotFound)
	ErrFloorNotFound = fmt.Errorf("floor not found: %w", domain.ErrNotFound)
)
