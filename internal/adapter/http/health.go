package http

import (
	"context"
	"net/http"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/diillson/mock-api-server/internal/app/route"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Pinger é implementado pelo armazenamento e pelo cache
type Pinger interface {
	Ping(ctx context.Context) error
}

// Dependency representa um componente do qual o servidor depende
type Dependency struct {
	Name     string
	Check    func(context.Context) error
	Critical bool // Falha de um componente crítico deixa o servidor DOWN
}

// checkResult é o estado de uma dependência no corpo do health check
type checkResult struct {
	Status     string  `json:"status"`
	Critical   bool    `json:"critical"`
	Latency    string  `json:"time,omitempty"`
	Error      string  `json:"error,omitempty"`
	Count      *int    `json:"count,omitempty"`
	Generation *uint64 `json:"generation,omitempty"`
}

type healthReport struct {
	Status      string                 `json:"status"`
	Time        time.Time              `json:"time"`
	Version     string                 `json:"version,omitempty"`
	Environment string                 `json:"environment,omitempty"`
	Checks      map[string]checkResult `json:"checks,omitempty"`
	System      gin.H                  `json:"system,omitempty"`
}

func (r *healthReport) httpStatus() int {
	if r.Status == statusDown {
		return http.StatusServiceUnavailable
	}
	return http.StatusOK
}

const (
	statusUp   = "UP"
	statusDown = "DOWN"
)

// HealthChecker implementa endpoints de health check
type HealthChecker struct {
	registry     *route.Registry
	logger       *zap.Logger
	dependencies []Dependency
}

// NewHealthChecker cria um health checker; storage e cache nil são omitidos
func NewHealthChecker(registry *route.Registry, storage Pinger, cache Pinger, logger *zap.Logger) *HealthChecker {
	hc := &HealthChecker{registry: registry, logger: logger}
	if storage != nil {
		hc.dependencies = append(hc.dependencies, Dependency{Name: "storage", Check: storage.Ping, Critical: true})
	}
	if cache != nil {
		hc.dependencies = append(hc.dependencies, Dependency{Name: "cache", Check: cache.Ping})
	}
	return hc
}

// LivenessCheck responde enquanto o processo estiver de pé
func (h *HealthChecker) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, healthReport{Status: statusUp, Time: time.Now().UTC()})
}

// ReadinessCheck verifica as dependências e o registro de rotas
func (h *HealthChecker) ReadinessCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	report := h.report(ctx, false)
	c.JSON(report.httpStatus(), report)
}

// DetailedHealth inclui erros das dependências e informações do runtime
func (h *HealthChecker) DetailedHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	report := h.report(ctx, true)
	report.Version = os.Getenv("APP_VERSION")
	report.Environment = environment()
	report.System = systemInfo()
	c.JSON(report.httpStatus(), report)
}

// report verifica as dependências em paralelo
func (h *HealthChecker) report(ctx context.Context, withErrors bool) *healthReport {
	report := &healthReport{
		Status: statusUp,
		Time:   time.Now().UTC(),
		Checks: make(map[string]checkResult, len(h.dependencies)+1),
	}

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for _, dep := range h.dependencies {
		wg.Add(1)
		go func(d Dependency) {
			defer wg.Done()

			start := time.Now()
			err := d.Check(ctx)
			result := checkResult{Status: statusUp, Critical: d.Critical, Latency: time.Since(start).String()}
			if err != nil {
				result.Status = statusDown
				if withErrors {
					result.Error = err.Error()
				}
				h.logger.Error("Health check falhou", zap.String("dependency", d.Name), zap.Error(err))
			}

			mu.Lock()
			defer mu.Unlock()
			report.Checks[d.Name] = result
			if err != nil && d.Critical {
				report.Status = statusDown
			}
		}(dep)
	}
	wg.Wait()

	count, generation := h.registry.Len(), h.registry.Generation()
	report.Checks["registry"] = checkResult{
		Status:     statusUp,
		Critical:   true,
		Count:      &count,
		Generation: &generation,
	}

	return report
}

func environment() string {
	if env := os.Getenv("ENVIRONMENT"); env != "" {
		return env
	}
	return "development"
}

func systemInfo() gin.H {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return gin.H{
		"go_version":    runtime.Version(),
		"go_os":         runtime.GOOS,
		"go_arch":       runtime.GOARCH,
		"num_cpu":       runtime.NumCPU(),
		"num_goroutine": runtime.NumGoroutine(),
		"memory_alloc": gin.H{
			"alloc_mb": float64(m.Alloc) / 1024 / 1024,
			"sys_mb":   float64(m.Sys) / 1024 / 1024,
			"num_gc":   m.NumGC,
		},
	}
}
