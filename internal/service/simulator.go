package service

import (
	"clariasense/internal/logger"
	"clariasense/internal/models"
	"context"
	"math/rand/v2"
	"time"
)

// ----------- Simulation constants -----------
const (
	SimBaselinePH   = 7.2
	SimBaselineTDS  = 320.0
	SimBaselineTemp = 27.0

	SimNoisePH   = 0.05 // max random step per second
	SimNoiseTDS  = 2.0
	SimNoiseTemp = 0.05

	SimReversionPerSec   = 0.02 // fraction of the gap to baseline closed per second
	SimEvaporationPerSec = 0.01 // cm of distance gained per second
	SimFullTankDistance  = 5.0  // cm after a refill
	SimRefillAtDistance  = 20.0 // rig refills itself past this
)

// SimulatorService feeds synthetic rig readings through the normal ingest
// path. Used for demos and local development.
type SimulatorService struct {
	readings Readings
	log      *logger.Logger
	rng      *rand.Rand

	values   map[models.SensorID]float64
	distance float64
	last     time.Time
}

func NewSimulatorService(readings Readings, log *logger.Logger) *SimulatorService {
	return &SimulatorService{
		readings: readings,
		log:      logger.OrNop(log),
		rng:      rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x5eed)),
		values: map[models.SensorID]float64{
			models.SensorPH:   SimBaselinePH,
			models.SensorTDS:  SimBaselineTDS,
			models.SensorTemp: SimBaselineTemp,
		},
		distance: SimFullTankDistance,
	}
}

// Run ticks at the given interval until ctx is canceled.
func (s *SimulatorService) Run(ctx context.Context, tick time.Duration) {
	t := time.NewTicker(tick)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			s.step(ctx, now)
		}
	}
}

// step advances the model by the time since the previous step and writes it.
func (s *SimulatorService) step(ctx context.Context, now time.Time) {
	if s.last.IsZero() {
		s.last = now
		return
	}
	elapsed := now.Sub(s.last).Seconds()
	if elapsed < 1 {
		return
	}
	s.last = now

	s.values[models.SensorPH] = s.walk(s.values[models.SensorPH], SimBaselinePH, SimNoisePH, elapsed)
	s.values[models.SensorTDS] = s.walk(s.values[models.SensorTDS], SimBaselineTDS, SimNoiseTDS, elapsed)
	s.values[models.SensorTemp] = s.walk(s.values[models.SensorTemp], SimBaselineTemp, SimNoiseTemp, elapsed)
	s.distance = evaporate(s.distance, elapsed)

	values := make(map[models.SensorID]float64, len(s.values))
	for k, v := range s.values {
		values[k] = v
	}
	if _, err := s.readings.Ingest(ctx, "simulator", values); err != nil {
		s.log.Warnw("simulator_ingest_failed", "err", err)
	}
	if err := s.readings.WriteDistance(ctx, "simulator", s.distance); err != nil {
		s.log.Warnw("simulator_distance_failed", "err", err)
	}
}

// walk adds bounded noise and pulls the value back toward baseline.
func (s *SimulatorService) walk(current, baseline, noise, elapsed float64) float64 {
	step := (s.rng.Float64()*2 - 1) * noise * elapsed
	return revertToward(current+step, baseline, elapsed)
}

// revertToward closes SimReversionPerSec of the gap per second, never overshooting.
func revertToward(current, baseline, elapsed float64) float64 {
	k := SimReversionPerSec * elapsed
	if k > 1 {
		k = 1
	}
	return current + (baseline-current)*k
}

// evaporate grows the distance and refills the tank past the refill mark.
func evaporate(distance, elapsed float64) float64 {
	distance += SimEvaporationPerSec * elapsed
	if distance > SimRefillAtDistance {
		return SimFullTankDistance
	}
	return distance
}
