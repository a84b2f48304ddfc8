// Package mfcc computes Mel-Frequency Cepstral Coefficients from a
// digitized speech waveform, following the numeric conventions of HTK:
// magnitude-domain filterbank energies over equal-height triangular
// filters, natural-log compression, a sqrt(2/M)-scaled DCT-II, and
// sinusoidal liftering.
//
// The pipeline is a pure, single-pass batch transform over a complete
// signal buffer. Audio decoding, plotting, and CLI wrappers are
// external collaborators consuming the returned matrices.
package mfcc

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/sonitude/melcep/algorithms/filters"
	"github.com/sonitude/melcep/algorithms/spectral"
	"github.com/sonitude/melcep/algorithms/windowing"
	"github.com/sonitude/melcep/logging"
)

// Params contains the parameters of the MFCC pipeline
type Params struct {
	SampleRate      int     `json:"sample_rate"`       // Sample rate in Hz (required, positive)
	FrameDurationMs float64 `json:"frame_duration_ms"` // Frame duration in ms (default: 25)
	FrameShiftMs    float64 `json:"frame_shift_ms"`    // Frame shift in ms (default: 10)
	PreEmphasis     float64 `json:"pre_emphasis"`      // Pre-emphasis coefficient (default: 0.97, 0 disables)
	LowFreq         float64 `json:"low_freq"`          // Filterbank low frequency bound in Hz (default: 0)
	HighFreq        float64 `json:"high_freq"`         // Filterbank high frequency bound in Hz (default: sampleRate/2)
	NumFilters      int     `json:"num_filters"`       // Number of mel filters M (default: 20)
	NumCoefficients int     `json:"num_coefficients"`  // Number of cepstral coefficients N, N <= M+1 (default: 13)
	LifterParam     int     `json:"lifter_param"`      // Sinusoidal lifter parameter L, 0 disables (default: 22)
	FFTSize         int     `json:"fft_size"`          // Transform length, power of two; 0 means next power of two >= frame length

	// Window is the analysis window strategy applied to each frame.
	// Nil defaults to a symmetric Hamming window, HTK's choice.
	Window windowing.Window `json:"-"`

	// AppendEnergy replaces c0 with the log of the frame's total
	// spectral energy, python_speech_features style.
	AppendEnergy bool `json:"append_energy"`

	// UseCMN subtracts the per-coefficient mean across frames
	UseCMN bool `json:"use_cmn"`

	// AppendDelta appends first-order regression deltas as extra
	// coefficient rows; AppendDeltaDelta additionally appends
	// second-order deltas and requires AppendDelta.
	AppendDelta      bool `json:"append_delta"`
	AppendDeltaDelta bool `json:"append_delta_delta"`
	DeltaWindow      int  `json:"delta_window"` // Regression half-window in frames (default: 2)
}

// DefaultParams returns the standard HTK-flavored configuration for the
// given sample rate.
func DefaultParams(sampleRate int) Params {
	return Params{
		SampleRate:      sampleRate,
		FrameDurationMs: 25.0,
		FrameShiftMs:    10.0,
		PreEmphasis:     0.97,
		LowFreq:         0.0,
		HighFreq:        float64(sampleRate) / 2.0,
		NumFilters:      20,
		NumCoefficients: 13,
		LifterParam:     22,
		Window:          windowing.NewHamming(true),
		DeltaWindow:     2,
	}
}

// withDefaults fills unset optional fields
func (p Params) withDefaults() Params {
	if p.FrameDurationMs == 0 {
		p.FrameDurationMs = 25.0
	}
	if p.FrameShiftMs == 0 {
		p.FrameShiftMs = 10.0
	}
	if p.HighFreq == 0 {
		p.HighFreq = float64(p.SampleRate) / 2.0
	}
	if p.NumFilters == 0 {
		p.NumFilters = 20
	}
	if p.NumCoefficients == 0 {
		p.NumCoefficients = 13
	}
	if p.Window == nil {
		p.Window = windowing.NewHamming(true)
	}
	if p.DeltaWindow == 0 {
		p.DeltaWindow = 2
	}
	return p
}

// Validate rejects malformed parameter combinations before any
// computation starts.
func (p Params) Validate() error {
	if p.SampleRate <= 0 {
		return fmt.Errorf("sample rate must be positive, got %d", p.SampleRate)
	}
	if p.FrameDurationMs <= 0 {
		return fmt.Errorf("frame duration must be positive, got %f", p.FrameDurationMs)
	}
	if p.FrameShiftMs <= 0 {
		return fmt.Errorf("frame shift must be positive, got %f", p.FrameShiftMs)
	}
	if p.FrameShiftMs > p.FrameDurationMs {
		return fmt.Errorf("frame shift (%f ms) must not exceed frame duration (%f ms)",
			p.FrameShiftMs, p.FrameDurationMs)
	}
	if p.FFTSize != 0 && !spectral.IsPow2(p.FFTSize) {
		return fmt.Errorf("FFT size must be a power of two, got %d", p.FFTSize)
	}
	if p.LifterParam < 0 {
		return fmt.Errorf("lifter parameter must be non-negative, got %d", p.LifterParam)
	}
	if p.AppendDeltaDelta && !p.AppendDelta {
		return fmt.Errorf("delta-delta coefficients require delta coefficients")
	}
	if p.DeltaWindow < 0 {
		return fmt.Errorf("delta window must be non-negative, got %d", p.DeltaWindow)
	}
	// Frequency range and filter/coefficient counts are validated by the
	// stage constructors, which know the derived FFT geometry.
	return nil
}

// Result contains the pipeline's output matrices. Frames are always the
// column axis: column t of every matrix belongs to frame t.
type Result struct {
	// Cepstra holds the liftered cepstral coefficients, one column per
	// frame. Row 0 is the DC/log-energy term. With deltas enabled the
	// matrix grows to 2x or 3x the base coefficient count.
	Cepstra *mat.Dense

	// LogEnergies holds the log filterbank energies, numFilters rows
	LogEnergies *mat.Dense

	// Frames holds the windowed frames, frameLength rows
	Frames *mat.Dense

	NumFrames   int
	FrameLength int
	FrameShift  int
	FFTSize     int
	NumBins     int
}

// Extractor runs the MFCC pipeline. The filterbank, DCT, and lifter
// tables are built once at construction and shared read-only across all
// frames of every Compute call.
type Extractor struct {
	params      Params
	preEmphasis *filters.PreEmphasis
	framer      *spectral.Framer
	analyzer    *spectral.SpectrumAnalyzer
	filterbank  *spectral.MelFilterbank
	cepstral    *spectral.CepstralTransform
	logger      logging.Logger
}

// New creates an Extractor from the given parameters. All parameter
// validation happens here; Compute performs no further configuration
// checks.
func New(params Params) (*Extractor, error) {
	params = params.withDefaults()
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid MFCC parameters: %w", err)
	}

	frameLength, frameShift := spectral.FrameParams(params.FrameDurationMs, params.FrameShiftMs, params.SampleRate)

	framer, err := spectral.NewFramer(frameLength, frameShift, params.Window)
	if err != nil {
		return nil, fmt.Errorf("invalid framing parameters: %w", err)
	}

	fftSize := params.FFTSize
	if fftSize == 0 {
		fftSize = spectral.NextPow2(frameLength)
	}
	analyzer, err := spectral.NewSpectrumAnalyzer(fftSize)
	if err != nil {
		return nil, fmt.Errorf("invalid spectral parameters: %w", err)
	}

	filterbank, err := spectral.NewMelFilterbank(params.NumFilters, fftSize, params.SampleRate, params.LowFreq, params.HighFreq)
	if err != nil {
		return nil, fmt.Errorf("invalid filterbank parameters: %w", err)
	}

	cepstral, err := spectral.NewCepstralTransform(params.NumCoefficients, params.NumFilters, params.LifterParam)
	if err != nil {
		return nil, fmt.Errorf("invalid cepstral parameters: %w", err)
	}

	logger := logging.WithFields(logging.Fields{
		"component": "mfcc_extractor",
	})

	return &Extractor{
		params:      params,
		preEmphasis: filters.NewPreEmphasis(params.PreEmphasis),
		framer:      framer,
		analyzer:    analyzer,
		filterbank:  filterbank,
		cepstral:    cepstral,
		logger:      logger,
	}, nil
}

// Params returns the extractor's effective parameters after defaulting
func (e *Extractor) Params() Params {
	return e.params
}

// Filterbank returns the extractor's mel filterbank
func (e *Extractor) Filterbank() *spectral.MelFilterbank {
	return e.filterbank
}

// Compute runs the full pipeline on a signal buffer. A signal shorter
// than one frame (including an empty one) yields a Result with zero
// frames and nil matrices, not an error.
func (e *Extractor) Compute(signal []float64) (*Result, error) {
	result := &Result{
		FrameLength: e.framer.FrameLength(),
		FrameShift:  e.framer.FrameShift(),
		FFTSize:     e.analyzer.FFTSize(),
		NumBins:     e.analyzer.NumBins(),
	}

	emphasized := e.preEmphasis.Apply(signal)

	frames := e.framer.Frames(emphasized)
	if frames == nil {
		e.logger.Debug("signal shorter than one frame, returning empty result", logging.Fields{
			"signal_length": len(signal),
			"frame_length":  result.FrameLength,
		})
		return result, nil
	}
	_, numFrames := frames.Dims()

	magnitude := e.analyzer.Compute(frames)

	energies, err := e.filterbank.Apply(magnitude)
	if err != nil {
		return nil, fmt.Errorf("filterbank application failed: %w", err)
	}
	logEnergies := spectral.LogCompress(energies)

	cepstra, err := e.cepstral.Apply(logEnergies)
	if err != nil {
		return nil, fmt.Errorf("cepstral transform failed: %w", err)
	}

	if e.params.AppendEnergy {
		replaceWithLogEnergy(cepstra, magnitude)
	}
	if e.params.UseCMN {
		NormalizeMean(cepstra)
	}
	if e.params.AppendDelta {
		cepstra = AppendDeltas(cepstra, e.params.DeltaWindow, e.params.AppendDeltaDelta)
	}

	result.Cepstra = cepstra
	result.LogEnergies = logEnergies
	result.Frames = frames
	result.NumFrames = numFrames

	e.logger.Debug("computed cepstral features", logging.Fields{
		"num_frames":   numFrames,
		"fft_size":     result.FFTSize,
		"num_filters":  e.filterbank.NumFilters(),
		"num_coeffs":   e.cepstral.NumCoefficients(),
		"frame_length": result.FrameLength,
	})

	return result, nil
}

// replaceWithLogEnergy overwrites row 0 of the cepstra with the log of
// each frame's total spectral energy, floored like the filterbank
// energies.
func replaceWithLogEnergy(cepstra, magnitude *mat.Dense) {
	numBins, numFrames := magnitude.Dims()
	for t := range numFrames {
		energy := 0.0
		for k := range numBins {
			v := magnitude.At(k, t)
			energy += v * v
		}
		if energy < spectral.Epsilon {
			energy = spectral.Epsilon
		}
		cepstra.Set(0, t, math.Log(energy))
	}
}

// Compute is a convenience wrapper that builds an Extractor and runs it
// once.
func Compute(signal []float64, params Params) (*Result, error) {
	extractor, err := New(params)
	if err != nil {
		return nil, err
	}
	return extractor.Compute(signal)
}
