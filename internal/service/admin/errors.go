package admin

import (
	"fmt"

	"github.com/kirinyoku/deskgo/internal/domain"
)

var ErrFloorNotFound = fmt.Errorf("floor not found: %w", domain.ErrNotFound)
