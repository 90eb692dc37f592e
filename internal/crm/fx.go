package crm

import "go.uber.org/fx"

var Module = fx.Module("crm",
	fx.Provide(NewClient),
)
