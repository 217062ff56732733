package license

import (
	"go.uber.org/fx"

	"github.com/fatflowers/licensing/internal/app/service/payment"
)

// Module exposes the license key service via Fx. The payment service is the
// PaymentState collaborator.
var Module = fx.Options(
	fx.Provide(
		fx.Annotate(
			func(p *payment.Service) *payment.Service { return p },
			fx.As(new(PaymentState)),
		),
		NewService,
	),
)
