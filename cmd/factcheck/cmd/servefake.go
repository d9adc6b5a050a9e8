package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	ferrors "github.com/Aman-CERP/factcheck/internal/errors"
	"github.com/Aman-CERP/factcheck/internal/fakebackend"
	"github.com/Aman-CERP/factcheck/internal/output"
)

func newServeFakeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve-fake",
		Short: "Serve a demo search backend",
		Long: `Serve an in-memory search backend with a small demo collection, for
trying factcheck without the real service:

  factcheck serve-fake --addr 127.0.0.1:8080 &
  factcheck search climate`,
		Hidden:      true,
		Args:        cobra.NoArgs,
		Annotations: configOptional,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServeFake(cmd.Context(), cmd, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8080", "Listen address")

	return cmd
}

func runServeFake(ctx context.Context, cmd *cobra.Command, addr string) error {
	gin.SetMode(gin.ReleaseMode)

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return ferrors.NetworkError("failed to listen on "+addr, err)
	}

	srv := &http.Server{
		Handler:           fakebackend.New(fakebackend.WithDemoCorpus()).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	output.New(cmd.OutOrStdout()).Statusf("🔎", "Demo backend listening on http://%s", ln.Addr())
	slog.Info("fake_backend_started", slog.String("addr", ln.Addr().String()))

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return ferrors.InternalError("demo backend stopped", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	slog.Info("fake_backend_stopping")
	return srv.Shutdown(shutdownCtx)
}
