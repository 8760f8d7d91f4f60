package types

import (
	"errors"
	"fmt"
)

type Stage string

const (
	StageResolveCredentials Stage = "resolve_credentials"
	StageResolveMoment      Stage = "resolve_moment"
	StageAcquire            Stage = "acquire"
	StageFallback           Stage = "resolve_moment_fallback"
	StageCut                Stage = "cut"
	StageTranscribe         Stage = "transcribe"
	StageComposite          Stage = "composite"
)

// ErrorKind classifies a pipeline failure. It implements error so callers can
// match with errors.Is(err, types.KindCutFailed).
type ErrorKind string

const (
	KindCredentialUnavailable   ErrorKind = "CredentialUnavailable"
	KindMomentSignalUnavailable ErrorKind = "MomentSignalUnavailable"
	KindInvalidInput            ErrorKind = "InvalidInput"
	KindAcquisitionFailed       ErrorKind = "AcquisitionFailed"
	KindUnusableAudio           ErrorKind = "UnusableAudio"
	KindCutFailed               ErrorKind = "CutFailed"
	KindTranscriptionFailed     ErrorKind = "TranscriptionFailed"
	KindEmptyTranscript         ErrorKind = "EmptyTranscript"
	KindCompositeFailed         ErrorKind = "CompositeFailed"
)

func (k ErrorKind) Error() string { return string(k) }

// Fatal reports whether the kind aborts a run. The other kinds are resolved by
// falling through to the next signal or to anonymous acquisition.
func (k ErrorKind) Fatal() bool {
	switch k {
	case KindCredentialUnavailable, KindMomentSignalUnavailable:
		return false
	}
	return true
}

// PipelineError is the single structured failure a run returns.
type PipelineError struct {
	Stage Stage
	Kind  ErrorKind
	// InputFault is true when the caller can fix the failure by changing the
	// request; false means the environment (tools, network, disk) failed.
	InputFault bool
	Err        error
}

func (e *PipelineError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Stage, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Stage, e.Kind, e.Err)
}

func (e *PipelineError) Unwrap() error { return e.Err }

func (e *PipelineError) Is(target error) bool {
	k, ok := target.(ErrorKind)
	return ok && k == e.Kind
}

func NewPipelineError(stage Stage, kind ErrorKind, inputFault bool, err error) *PipelineError {
	return &PipelineError{Stage: stage, Kind: kind, InputFault: inputFault, Err: err}
}

// AsPipelineError extracts the structured failure from err, if any.
func AsPipelineError(err error) (*PipelineError, bool) {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}
