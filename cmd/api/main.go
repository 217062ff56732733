package main

// @title           Licensing API
// @version         1.0
// @description     Software license keys, activations, releases and the license API.
// @termsOfService  http://example.com/terms/

// @contact.name   API Support
// @contact.url    http://www.example.com/support
// @contact.email  support@example.com

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:8888
// @BasePath  /

// @securityDefinitions.apikey  AdminToken
// @in                          header
// @name                        Authorization

import (
	"context"
	"os"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/fatflowers/licensing/internal/app"
)

func main() {
	os.Exit(run())
}

// run blocks until SIGINT, SIGTERM or an fx.Shutdown and returns the exit code.
// Start and stop failures are already reported by the fx event logger.
func run() int {
	a := fx.New(
		app.Module,
		fx.WithLogger(func(l *zap.SugaredLogger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: l.Desugar().Named("fx")}
		}),
	)
	if err := a.Err(); err != nil {
		// the graph never built, so there is no app logger yet
		zap.NewExample().Sugar().Errorw("app_build_failed", "err", err)
		return 1
	}

	startCtx, cancel := context.WithTimeout(context.Background(), app.DefaultStartTimeout)
	defer cancel()
	if err := a.Start(startCtx); err != nil {
		return 1
	}
	sig := <-a.Wait()

	stopCtx, cancelStop := context.WithTimeout(context.Background(), app.DefaultStopTimeout)
	defer cancelStop()
	if err := a.Stop(stopCtx); err != nil {
		return 1
	}
	return sig.ExitCode
}
