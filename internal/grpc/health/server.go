// Package health реализует стандартный gRPC health service
// (grpc.health.v1.Health) для оркестраторов.
//
// Статус сервиса периодически обновляется по результатам проверки зависимостей.
package health

import (
	"context"
	"log/slog"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName имя сервиса в health-протоколе. Пустое имя означает весь сервер.
const ServiceName = "yamdb"

// Checker проверяет зависимости сервиса.
type Checker interface {
	Check(ctx context.Context) (map[string]string, bool)
}

// Server gRPC-сервер со службой здоровья.
type Server struct {
	grpcServer *grpc.Server
	health     *health.Server
	checker    Checker
	interval   time.Duration
	log        *slog.Logger
}

// NewServer создает новый экземпляр Server.
func NewServer(checker Checker, interval time.Duration, log *slog.Logger) *Server {
	hs := health.NewServer()
	gs := grpc.NewServer()
	healthpb.RegisterHealthServer(gs, hs)

	return &Server{
		grpcServer: gs,
		health:     hs,
		checker:    checker,
		interval:   interval,
		log:        log,
	}
}

// Refresh проверяет зависимости и выставляет статус.
func (s *Server) Refresh(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	status := healthpb.HealthCheckResponse_SERVING
	if statuses, ok := s.checker.Check(ctx); !ok {
		status = healthpb.HealthCheckResponse_NOT_SERVING
		s.log.Warn("service is not serving", slog.Any("statuses", statuses))
	}
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
	return status
}

// Serve принимает соединения на lis, пока не отменён ctx.
func (s *Server) Serve(ctx context.Context, lis net.Listener) error {
	s.Refresh(ctx)

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("gRPC health service listening on", slog.String("address", lis.Addr().String()))
		errCh <- s.grpcServer.Serve(lis)
	}()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.health.Shutdown()
			s.grpcServer.GracefulStop()
			return nil
		case err := <-errCh:
			return err
		case <-ticker.C:
			s.Refresh(ctx)
		}
	}
}

// ListenAndServe слушает address и вызывает Serve.
func (s *Server) ListenAndServe(ctx context.Context, address string) error {
	lis, err := net.Listen("tcp", address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, lis)
}
