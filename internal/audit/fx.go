package audit

import (
	"go.uber.org/fx"

	"github.com/spitfire8790/landiqr/internal/audit/service"
)

var Module = fx.Module("audit.service",
	fx.Provide(service.NewService),
)
