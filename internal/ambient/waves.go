// Package ambient generates the slowly drifting background waves drawn behind
// the slideshow.
package ambient

import "math"

const (
	// WaveCount is the number of background waves
	WaveCount = 5
	// TimeStep is added to the animation clock on every tick
	TimeStep = 0.01
)

// Wave is the position (percent of the screen) and size of one wave
type Wave struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Size float64 `json:"size"`
}

type waveParams struct {
	freqX, phaseX, ampX float64
	freqY, phaseY, ampY float64
	baseSize            float64
	freqSize, phaseSize float64
	sizeVariance        float64
}

// distinct frequencies and phases keep the waves out of step with each other
var params = [WaveCount]waveParams{
	{freqX: 0.50, phaseX: 0.0, ampX: 30, freqY: 0.30, phaseY: 0.0, ampY: 20, baseSize: 40, freqSize: 0.20, phaseSize: 0.0, sizeVariance: 10},
	{freqX: 0.30, phaseX: 2.0, ampX: 35, freqY: 0.45, phaseY: 1.0, ampY: 25, baseSize: 35, freqSize: 0.25, phaseSize: 1.5, sizeVariance: 8},
	{freqX: 0.40, phaseX: 4.0, ampX: 25, freqY: 0.35, phaseY: 3.0, ampY: 30, baseSize: 45, freqSize: 0.15, phaseSize: 3.0, sizeVariance: 12},
	{freqX: 0.25, phaseX: 1.0, ampX: 40, freqY: 0.50, phaseY: 2.5, ampY: 15, baseSize: 30, freqSize: 0.30, phaseSize: 4.5, sizeVariance: 6},
	{freqX: 0.35, phaseX: 3.0, ampX: 20, freqY: 0.25, phaseY: 4.0, ampY: 35, baseSize: 50, freqSize: 0.10, phaseSize: 2.0, sizeVariance: 15},
}

// Compute returns the wave layout at animation time t
func Compute(t float64) [WaveCount]Wave {
	var waves [WaveCount]Wave
	for i, p := range params {
		waves[i] = Wave{
			X:    50 + math.Sin(t*p.freqX+p.phaseX)*p.ampX,
			Y:    50 + math.Cos(t*p.freqY+p.phaseY)*p.ampY,
			Size: p.baseSize + math.Sin(t*p.freqSize+p.phaseSize)*p.sizeVariance,
		}
	}
	return waves
}
