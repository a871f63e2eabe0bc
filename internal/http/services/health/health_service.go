// Package health contiene el service para health checks.
package health

import (
	"context"
	"fmt"
	"sort"
	"time"

	dto "github.com/dropDatabas3/socialgate/internal/http/dto/health"
	"github.com/dropDatabas3/socialgate/internal/observability/logger"
)

// HealthService define las operaciones de health check.
type HealthService interface {
	Check(ctx context.Context) dto.HealthResponse
}

// Pinger es cualquier dependencia que sabe responder si está viva.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps contiene las dependencias inyectables para el health service.
// Todo componente listado es crítico: si falla, /readyz responde 503.
type Deps struct {
	Components map[string]Pinger
	Version    string
	Timeout    time.Duration
}

type healthService struct {
	deps Deps
}

// NewHealthService crea un nuevo service de health check.
func NewHealthService(deps Deps) HealthService {
	if deps.Timeout <= 0 {
		deps.Timeout = 2 * time.Second
	}
	return &healthService{deps: deps}
}

const componentHealth = "health"

func (s *healthService) Check(ctx context.Context) dto.HealthResponse {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component(componentHealth),
		logger.Op("Check"),
	)

	response := dto.HealthResponse{
		Status:     "ready",
		Components: make(map[string]dto.HealthStatus, len(s.deps.Components)),
		Version:    s.deps.Version,
		Timestamp:  time.Now().UTC(),
	}

	names := make([]string, 0, len(s.deps.Components))
	for name := range s.deps.Components {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		pctx, cancel := context.WithTimeout(ctx, s.deps.Timeout)
		err := s.deps.Components[name].Ping(pctx)
		cancel()
		if err != nil {
			response.Components[name] = dto.HealthStatus{
				Status:  "error",
				Message: fmt.Sprintf("unavailable: %v", err),
			}
			response.Status = "unavailable"
			log.Error(name+" unavailable", logger.Err(err))
			continue
		}
		response.Components[name] = dto.HealthStatus{Status: "ok"}
	}
	return response
}
