package product

import (
	"context"

	"go.uber.org/fx"
)

// Module exposes the product service via Fx and seeds configured products on start.
var Module = fx.Options(
	fx.Provide(NewService),
	fx.Invoke(registerSeed),
)

func registerSeed(lc fx.Lifecycle, s *Service) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return s.Seed(ctx)
		},
	})
}
