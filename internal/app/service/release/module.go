package release

import "go.uber.org/fx"

// Module exposes the release service via Fx.
var Module = fx.Options(
	fx.Provide(NewService),
)
