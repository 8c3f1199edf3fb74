package workflow

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/JaimeStill/go-agents-orchestration/pkg/state"

	"github.com/JaimeStill/crediscope/internal/cache"
	"github.com/JaimeStill/crediscope/internal/claims"
	"github.com/JaimeStill/crediscope/internal/evidence"
	"github.com/JaimeStill/crediscope/internal/reasoning"
	"github.com/JaimeStill/crediscope/internal/report"
	"github.com/JaimeStill/crediscope/internal/scoring"
)

// Stage is a step in the life of one analysis request. Stages are logged,
// not stored.
type Stage string

const (
	StageReceived           Stage = "received"
	StageCacheCheck         Stage = "cache_check"
	StageCollectingEvidence Stage = "collecting_evidence"
	StageSynthesizing       Stage = "synthesizing"
	StageAggregating        Stage = "aggregating"
	StageAssembled          Stage = "assembled"
	StageLocalizing         Stage = "localizing"
	StageCached             Stage = "cached"
	StageFailed             Stage = "failed"
)

// Graph node names.
const (
	NodeCollect    = "collect"
	NodeSynthesize = "synthesize"
	NodeAggregate  = "aggregate"
	NodeAssemble   = "assemble"
	NodeLocalize   = "localize"
	NodeFinalize   = "finalize"
)

// State bag keys shared between graph nodes.
const (
	KeyInput       = "input"
	KeyFingerprint = "fingerprint"
	KeyOptions     = "options"
	KeyCacheStatus = "cache_status"
	KeyStarted     = "started"
	KeyDeadline    = "deadline"
	KeyCollection  = "collection"
	KeySynthesis   = "synthesis"
	KeyVerdict     = "verdict"
	KeyResult      = "result"
	KeyLogger      = "logger"
)

// run is the per-computation context seeded into the initial state.
type run struct {
	Fingerprint claims.Fingerprint
	Input       claims.Input
	Options     Options
	Cache       cache.Status
	Started     time.Time
	Deadline    time.Time
	Logger      *slog.Logger
}

func seed(r run) state.State {
	s := state.New(nil)
	s = s.Set(KeyFingerprint, r.Fingerprint)
	s = s.Set(KeyInput, r.Input)
	s = s.Set(KeyOptions, r.Options)
	s = s.Set(KeyCacheStatus, r.Cache)
	s = s.Set(KeyStarted, r.Started)
	s = s.Set(KeyDeadline, r.Deadline)
	s = s.Set(KeyLogger, r.Logger)
	return s
}

func lookup[T any](s state.State, key string) (T, error) {
	var zero T

	val, ok := s.Get(key)
	if !ok {
		return zero, fmt.Errorf("missing %s in state", key)
	}

	v, ok := val.(T)
	if !ok {
		return zero, fmt.Errorf("%s is %T, not %T", key, val, zero)
	}

	return v, nil
}

func inputOf(s state.State) (claims.Input, error) {
	return lookup[claims.Input](s, KeyInput)
}

func collectionOf(s state.State) (evidence.Collection, error) {
	return lookup[evidence.Collection](s, KeyCollection)
}

func synthesisOf(s state.State) (reasoning.Synthesis, error) {
	return lookup[reasoning.Synthesis](s, KeySynthesis)
}

func verdictOf(s state.State) (scoring.Verdict, error) {
	return lookup[scoring.Verdict](s, KeyVerdict)
}

func resultOf(s state.State) (report.Result, error) {
	return lookup[report.Result](s, KeyResult)
}
