// Package application contains the per-account workflow, the telemetry
// generator, and the run coordinator.
package application

import (
	"math"
	"math/rand/v2"
	"sync"

	"github.com/ljhyyds-jjk/ecust-autorun/internal/domain/model"
)

// Baseline payload values for a nominal 10-minute run. The wait multiplier
// scales both the actual wait and the submitted figures from the same
// sample, so the record stays consistent with how long the workflow really
// waited.
const (
	baseWaitSeconds = 600
	baseRunningTime = 601
	baseMileage     = 2001
	baseStepCount   = 2000.4117647058823533
	fixedPace       = 301

	minWaitMultiplier = 1.0
	maxWaitMultiplier = 1.3

	minRouteDistance = 0.2
	maxRouteDistance = 2.0

	positionJitter = 0.1
)

// Nominal finish position; each submission perturbs it independently.
const (
	finishLat = 30.831605902777778
	finishLng = 121.50631998697916
)

// Telemetry holds the scaled figures of one synthesized run.
type Telemetry struct {
	RunningTime int
	Mileage     int
	StepCount   float64
	Pace        int
}

// Generator samples randomized-but-bounded activity parameters. Safe for
// concurrent use; the underlying rand.Rand is serialized behind a mutex.
type Generator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewGenerator creates a Generator. A nil rng gets a freshly seeded source;
// tests pass a deterministic one.
func NewGenerator(rng *rand.Rand) *Generator {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Generator{rng: rng}
}

// ResolveDelay resolves a start-delay spec to seconds: a fixed spec returns
// its value, a range spec a uniform sample in [Lo, Hi] inclusive, and any
// malformed spec 0.
func (g *Generator) ResolveDelay(spec model.DelaySpec) int {
	switch spec.Kind {
	case model.DelayFixed:
		return spec.Fixed
	case model.DelayRange:
		if spec.Lo > spec.Hi {
			return 0
		}
		g.mu.Lock()
		defer g.mu.Unlock()
		return spec.Lo + g.rng.IntN(spec.Hi-spec.Lo+1)
	default:
		return 0
	}
}

// WaitMultiplier samples the run's scaling factor, uniform in [1.0, 1.3].
// Sampled once per workflow run and reused for both the wait duration and
// the submitted telemetry.
func (g *Generator) WaitMultiplier() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return minWaitMultiplier + g.rng.Float64()*(maxWaitMultiplier-minWaitMultiplier)
}

// RouteDistance samples a per-waypoint distance, uniform in [0.2, 2.0]
// rounded to one decimal place.
func (g *Generator) RouteDistance() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	d := minRouteDistance + g.rng.Float64()*(maxRouteDistance-minRouteDistance)
	return math.Round(d*10) / 10
}

// JitterPosition perturbs each coordinate independently by a uniform sample
// in [-0.1, +0.1].
func (g *Generator) JitterPosition(lat, lng float64) (float64, float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return lat + (g.rng.Float64()*2-1)*positionJitter,
		lng + (g.rng.Float64()*2-1)*positionJitter
}

// WaitSeconds is the actual wait duration for a given multiplier.
func WaitSeconds(multiplier float64) int {
	return int(math.Floor(baseWaitSeconds * multiplier))
}

// ScaledTelemetry derives the submitted figures from the wait multiplier.
// Step count is deliberately left unrounded; pace is constant.
func ScaledTelemetry(multiplier float64) Telemetry {
	return Telemetry{
		RunningTime: int(math.Floor(baseRunningTime * multiplier)),
		Mileage:     int(math.Floor(baseMileage * multiplier)),
		StepCount:   baseStepCount * multiplier,
		Pace:        fixedPace,
	}
}
