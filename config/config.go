// SPDX-License-Identifier: MIT

// Package config loads session files that select the backend, solver,
// amplitude constraint and physical constants of a sonora session.
//
// Every field is optional; an omitted field takes the library default, so an
// empty file is a valid session (cpu backend, GSPAT, DontCare). YAML (.yaml,
// .yml) and JSON (.json) share one schema:
//
//	backend: cpu            # cpu | mock | opencl
//	sound_speed: 340000     # mm/s
//	attenuation: 0          # 1/mm
//	cycle: 4096             # encoder cycle for every transducer
//	solver:
//	  name: gspat           # naive | gs | gspat | sdp | evp | lm | greedy | lssgreedy
//	  repeat: 100
//	  alpha: 0.001
//	  lambda: 0.8
//	  gamma: 1
//	  eps1: 1e-8
//	  eps2: 1e-8
//	  tau: 1e-3
//	  k_max: 5
//	  phase_div: 16
//	  seed: 0
//	constraint:
//	  kind: uniform         # dont_care | normalize | uniform | clamp
//	  value: 1
//	  min: 0
//	  max: 1
//
// Solver fields that do not apply to the selected solver are ignored.
package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/sonora/backend"
	"github.com/katalvlaran/sonora/constraint"
	"github.com/katalvlaran/sonora/drive"
	"github.com/katalvlaran/sonora/geometry"
	"github.com/katalvlaran/sonora/holo"
	"github.com/katalvlaran/sonora/internal/errcat"
	"github.com/katalvlaran/sonora/internal/monitoring"
)

// MaxFileSize bounds the size of a session file.
const MaxFileSize = 1 << 20

// Defaults for omitted fields.
const (
	DefaultBackend    = backend.CPUName
	DefaultSolver     = holo.NameGSPAT
	DefaultConstraint = "dont_care"
)

// ErrInvalidConfig is returned for an unreadable or inconsistent session file.
var ErrInvalidConfig = errcat.Configuration("config: invalid session")

// Session is the root of a session file.
type Session struct {
	Backend     *string           `json:"backend,omitempty" yaml:"backend,omitempty"`
	SoundSpeed  *float64          `json:"sound_speed,omitempty" yaml:"sound_speed,omitempty"`
	Attenuation *float64          `json:"attenuation,omitempty" yaml:"attenuation,omitempty"`
	Cycle       *int              `json:"cycle,omitempty" yaml:"cycle,omitempty"`
	Solver      *SolverConfig     `json:"solver,omitempty" yaml:"solver,omitempty"`
	Constraint  *ConstraintConfig `json:"constraint,omitempty" yaml:"constraint,omitempty"`
}

// SolverConfig selects a solver and overrides its defaults.
type SolverConfig struct {
	Name     *string  `json:"name,omitempty" yaml:"name,omitempty"`
	Repeat   *int     `json:"repeat,omitempty" yaml:"repeat,omitempty"`
	Alpha    *float64 `json:"alpha,omitempty" yaml:"alpha,omitempty"`
	Lambda   *float64 `json:"lambda,omitempty" yaml:"lambda,omitempty"`
	Gamma    *float64 `json:"gamma,omitempty" yaml:"gamma,omitempty"`
	Eps1     *float64 `json:"eps1,omitempty" yaml:"eps1,omitempty"`
	Eps2     *float64 `json:"eps2,omitempty" yaml:"eps2,omitempty"`
	Tau      *float64 `json:"tau,omitempty" yaml:"tau,omitempty"`
	KMax     *int     `json:"k_max,omitempty" yaml:"k_max,omitempty"`
	PhaseDiv *int     `json:"phase_div,omitempty" yaml:"phase_div,omitempty"`
	Seed     *uint64  `json:"seed,omitempty" yaml:"seed,omitempty"`
}

// ConstraintConfig selects an amplitude constraint.
type ConstraintConfig struct {
	Kind  *string  `json:"kind,omitempty" yaml:"kind,omitempty"`
	Value *float64 `json:"value,omitempty" yaml:"value,omitempty"`
	Min   *float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max   *float64 `json:"max,omitempty" yaml:"max,omitempty"`
}

// Load reads, parses and validates the session file at path.
func Load(path string) (*Session, error) {
	cleanPath := filepath.Clean(path)
	format, err := formatOf(cleanPath)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("config: stat %s: %w", cleanPath, err)
	}
	if info.Size() > MaxFileSize {
		return nil, fmt.Errorf("%w: file too large: %d bytes (max %d)", ErrInvalidConfig, info.Size(), MaxFileSize)
	}
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", cleanPath, err)
	}

	s, err := Parse(data, format)
	if err != nil {
		return nil, err
	}
	monitoring.Logger().Info("config: loaded",
		"path", cleanPath,
		"backend", s.GetBackend(),
		"solver", s.GetSolverName())
	return s, nil
}

// Format is the encoding of a session file.
type Format string

const (
	YAML Format = "yaml"
	JSON Format = "json"
)

func formatOf(path string) (Format, error) {
	switch ext := filepath.Ext(path); ext {
	case ".yaml", ".yml":
		return YAML, nil
	case ".json":
		return JSON, nil
	default:
		return "", fmt.Errorf("%w: extension must be .yaml, .yml or .json, got %q", ErrInvalidConfig, ext)
	}
}

// Parse decodes and validates a session in the given format.
func Parse(data []byte, format Format) (*Session, error) {
	s := &Session{}
	var err error
	switch format {
	case YAML:
		err = yaml.Unmarshal(data, s)
	case JSON:
		err = json.Unmarshal(data, s)
	default:
		return nil, fmt.Errorf("%w: unknown format %q", ErrInvalidConfig, format)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", ErrInvalidConfig, format, err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Save writes s to path in the format implied by its extension.
func (s *Session) Save(path string) error {
	format, err := formatOf(path)
	if err != nil {
		return err
	}
	var data []byte
	if format == YAML {
		data, err = yaml.Marshal(s)
	} else {
		data, err = json.MarshalIndent(s, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("config: encode %s: %w", format, err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate checks every field that is set.
func (s *Session) Validate() error {
	if s.Backend != nil && !slices.Contains(backend.Names(), *s.Backend) {
		return fmt.Errorf("%w: unknown backend %q", ErrInvalidConfig, *s.Backend)
	}
	if s.SoundSpeed != nil && !(*s.SoundSpeed > 0 && !math.IsInf(*s.SoundSpeed, 0)) {
		return fmt.Errorf("%w: sound_speed must be finite and > 0, got %g", ErrInvalidConfig, *s.SoundSpeed)
	}
	if s.Attenuation != nil && !(*s.Attenuation >= 0 && !math.IsInf(*s.Attenuation, 0)) {
		return fmt.Errorf("%w: attenuation must be finite and >= 0, got %g", ErrInvalidConfig, *s.Attenuation)
	}
	if s.Cycle != nil {
		if *s.Cycle < 0 || *s.Cycle > math.MaxUint16 {
			return fmt.Errorf("%w: cycle %d out of range", ErrInvalidConfig, *s.Cycle)
		}
		if _, err := drive.NewEncoder(uint16(*s.Cycle)); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
	}
	if _, err := s.NewSolver(); err != nil {
		return err
	}
	if _, err := s.NewConstraint(); err != nil {
		return err
	}
	return nil
}

// GetBackend returns the backend name or DefaultBackend.
func (s *Session) GetBackend() string {
	if s.Backend == nil {
		return DefaultBackend
	}
	return *s.Backend
}

// GetSoundSpeed returns the speed of sound in mm/s or the geometry default.
func (s *Session) GetSoundSpeed() float64 {
	if s.SoundSpeed == nil {
		return geometry.DefaultSoundSpeed
	}
	return *s.SoundSpeed
}

// GetAttenuation returns α in 1/mm or the geometry default.
func (s *Session) GetAttenuation() float64 {
	if s.Attenuation == nil {
		return geometry.DefaultAttenuation
	}
	return *s.Attenuation
}

// GetCycle returns the encoder cycle or 0 when each transducer keeps its own.
func (s *Session) GetCycle() uint16 {
	if s.Cycle == nil {
		return 0
	}
	return uint16(*s.Cycle)
}

// GetSolverName returns the solver name or DefaultSolver.
func (s *Session) GetSolverName() string {
	if s.Solver == nil || s.Solver.Name == nil {
		return DefaultSolver
	}
	return *s.Solver.Name
}

// OpenBackend constructs the selected backend. The caller closes it.
func (s *Session) OpenBackend() (backend.Backend, error) {
	return backend.Open(s.GetBackend())
}

// GeometryOptions returns the physical constants as geometry options.
func (s *Session) GeometryOptions() []geometry.Option {
	return []geometry.Option{
		geometry.WithSoundSpeed(s.GetSoundSpeed()),
		geometry.WithAttenuation(s.GetAttenuation()),
	}
}

// ComputeOptions returns the pipeline options implied by the session.
func (s *Session) ComputeOptions() []holo.ComputeOption {
	if c := s.GetCycle(); c != 0 {
		return []holo.ComputeOption{holo.WithCycle(c)}
	}
	return nil
}

// NewSolver returns the selected solver with every applicable override.
func (s *Session) NewSolver() (holo.Solver, error) {
	solver, err := holo.NewSolver(s.GetSolverName())
	if err != nil {
		return nil, err
	}
	sc := s.Solver
	if sc == nil {
		return solver, nil
	}

	switch v := solver.(type) {
	case holo.GS:
		setInt(&v.Repeat, sc.Repeat)
		solver = v
	case holo.GSPAT:
		setInt(&v.Repeat, sc.Repeat)
		solver = v
	case holo.SDP:
		setInt(&v.Repeat, sc.Repeat)
		setFloat(&v.Alpha, sc.Alpha)
		setFloat(&v.Lambda, sc.Lambda)
		if sc.Seed != nil {
			v.Seed = *sc.Seed
		}
		solver = v
	case holo.EVP:
		setFloat(&v.Gamma, sc.Gamma)
		solver = v
	case holo.LM:
		setFloat(&v.Eps1, sc.Eps1)
		setFloat(&v.Eps2, sc.Eps2)
		setFloat(&v.Tau, sc.Tau)
		setInt(&v.KMax, sc.KMax)
		solver = v
	case holo.Greedy:
		setInt(&v.PhaseDiv, sc.PhaseDiv)
		solver = v
	}

	if val, ok := solver.(holo.Validator); ok {
		if err := val.Validate(); err != nil {
			return nil, err
		}
	}
	return solver, nil
}

// NewConstraint returns the selected constraint. Uniform defaults to 1 and
// Clamp to [0,1].
func (s *Session) NewConstraint() (constraint.Constraint, error) {
	cc := s.Constraint
	if cc == nil {
		return constraint.DontCare(), nil
	}
	name := DefaultConstraint
	if cc.Kind != nil {
		name = *cc.Kind
	}
	kind, err := constraint.ParseKind(name)
	if err != nil {
		return constraint.Constraint{}, err
	}

	var c constraint.Constraint
	switch kind {
	case constraint.KindNormalize:
		c = constraint.Normalize()
	case constraint.KindUniform:
		v := 1.0
		setFloat(&v, cc.Value)
		c = constraint.Uniform(v)
	case constraint.KindClamp:
		lo, hi := 0.0, 1.0
		setFloat(&lo, cc.Min)
		setFloat(&hi, cc.Max)
		c = constraint.Clamp(lo, hi)
	default:
		c = constraint.DontCare()
	}
	if err := c.Validate(); err != nil {
		return constraint.Constraint{}, err
	}
	return c, nil
}

func setInt(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}

func setFloat(dst *float64, src *float64) {
	if src != nil {
		*dst = *src
	}
}
