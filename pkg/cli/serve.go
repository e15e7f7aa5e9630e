package cli

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gots/slice"
	"github.com/urfave/cli/v3"

	"github.com/gitforge-dev/gitforge/pkg/cli/config"
	"github.com/gitforge-dev/gitforge/pkg/controller/server"
	"github.com/gitforge-dev/gitforge/pkg/infra"
	"github.com/gitforge-dev/gitforge/pkg/infra/deviceflow"
	"github.com/gitforge-dev/gitforge/pkg/infra/githubapi"
	"github.com/gitforge-dev/gitforge/pkg/repository/githubcontents"
	"github.com/gitforge-dev/gitforge/pkg/usecase"
	"github.com/gitforge-dev/gitforge/pkg/utils/logging"
)

func serveCommand() *cli.Command {
	var (
		addr string

		admin  config.Admin
		sentry config.Sentry
	)
	serveFlags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "Binding address",
			Value:       "127.0.0.1:8000",
			Sources:     cli.EnvVars("GITFORGE_ADDR"),
			Destination: &addr,
		},
	}

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Run the admin console backend",
		Flags: slice.Flatten(
			serveFlags,
			admin.Flags(),
			sentry.Flags(),
		),
		Action: func(ctx context.Context, c *cli.Command) error {
			logging.Default().Info("starting serve",
				slog.Any("Addr", addr),
				slog.Any("Admin", &admin),
				slog.Any("Sentry", &sentry),
			)

			if err := sentry.Configure(ctx); err != nil {
				return err
			}

			device, err := deviceflow.New(admin.ClientID())
			if err != nil {
				return err
			}

			contents, err := githubcontents.New(admin.Owner(), admin.Repo())
			if err != nil {
				return err
			}

			clients := infra.New(
				infra.WithGitHub(githubapi.New()),
				infra.WithDevice(device),
				infra.WithContents(contents),
			)

			sc := usecase.NewSessionController(clients, admin.Owner(), admin.Repo(), admin.Token())
			sc.Bootstrap(ctx)

			s := server.New(sc)

			serverErr := make(chan error, 1)
			httpServer := &http.Server{
				Addr:    addr,
				Handler: s.Mux(),

				ReadHeaderTimeout: 10 * time.Second,
				ReadTimeout:       30 * time.Second,
				WriteTimeout:      30 * time.Second,
			}

			go func() {
				logging.Default().Info("starting http server", "addr", addr)
				if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
					serverErr <- goerr.Wrap(err, "failed to listen and serve")
				}
			}()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

			select {
			case err := <-serverErr:
				return err

			case sig := <-quit:
				logging.Default().Info("shutting down server", "signal", sig)

				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancel()

				if err := httpServer.Shutdown(ctx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server")
				}
			}

			return nil
		},
	}
}
