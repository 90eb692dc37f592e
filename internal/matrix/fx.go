package matrix

import (
	"go.uber.org/fx"

	"github.com/spitfire8790/landiqr/internal/matrix/service"
)

var Module = fx.Module("matrix.service",
	fx.Provide(service.NewService),
)
