package api

import "errors"

// ErrShaderCompile means the backend's shader compiler rejected the
// generated macros plus the user's shader body. The core never raises
// this itself; it is here so that backend implementations (and the stub
// used in tests) can report the failure through a shared error type.
var ErrShaderCompile = errors.New("api: shader compile failure")

// ErrBackendResource means a Texture/Framebuffer/Buffer factory failed.
// Like ErrShaderCompile, this is raised by backends, not by the core,
// and propagated unchanged up through step.Driver.
var ErrBackendResource = errors.New("api: backend resource failure")

// ShaderCompileError wraps ErrShaderCompile with the backend-reported
// reason (compiler log, line numbers, and so on).
type ShaderCompileError struct {
	Reason string
}

func (e *ShaderCompileError) Error() string { return "api: shader compile failure: " + e.Reason }

func (e *ShaderCompileError) Unwrap() error { return ErrShaderCompile }

// BackendResourceError wraps ErrBackendResource with the backend-reported
// reason (out of memory, unsupported format, and so on).
type BackendResourceError struct {
	Reason string
}

func (e *BackendResourceError) Error() string { return "api: backend resource failure: " + e.Reason }

func (e *BackendResourceError) Unwrap() error { return ErrBackendResource }
