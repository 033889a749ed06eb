// Package apperrors defines the typed failures surfaced by the ingestion
// pipeline and the history queries. Callers match them with errors.As.
package apperrors

import (
	"errors"
	"fmt"
)

// ConfigurationError is returned when a required setting is missing at startup
type ConfigurationError struct {
	Key string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s is required", e.Key)
}

// InvalidSourceError is returned when a submitted item cannot be classified
// or no identifier can be extracted from it. Source is the original input.
type InvalidSourceError struct {
	Source string
	Reason string
}

func (e *InvalidSourceError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("invalid source %q: %s", e.Source, e.Reason)
	}
	return fmt.Sprintf("invalid source %q", e.Source)
}

// TransportError wraps a network failure reaching the metadata API
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("metadata request failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// RemoteStatusError is returned for a non-2xx metadata response
type RemoteStatusError struct {
	Code   int
	Reason string
}

func (e *RemoteStatusError) Error() string {
	return fmt.Sprintf("metadata API returned status %d: %s", e.Code, e.Reason)
}

// EmptyCatalogError signals a valid lookup that returned no items
type EmptyCatalogError struct {
	ID string
}

func (e *EmptyCatalogError) Error() string {
	return fmt.Sprintf("no catalog entry for %q", e.ID)
}

// DeserializationError is returned when a response body has an unexpected shape
type DeserializationError struct {
	Err error
}

func (e *DeserializationError) Error() string {
	return fmt.Sprintf("failed to decode metadata response: %v", e.Err)
}

func (e *DeserializationError) Unwrap() error {
	return e.Err
}

// ProbeError is returned when local file metadata cannot be read
type ProbeError struct {
	Path string
	Err  error
}

func (e *ProbeError) Error() string {
	return fmt.Sprintf("failed to probe %s: %v", e.Path, e.Err)
}

func (e *ProbeError) Unwrap() error {
	return e.Err
}

// StorageError wraps a failed persistence operation
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s failed: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// NotFoundError is returned by current/previous when the log is too short
type NotFoundError struct {
	Kind  string
	Query string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no %s %s entry", e.Query, e.Kind)
}

// IsNotFound reports whether err is, or wraps, a NotFoundError
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsUpstream reports whether err originates from the metadata source rather
// than from the caller or from storage.
func IsUpstream(err error) bool {
	var (
		transport *TransportError
		status    *RemoteStatusError
		empty     *EmptyCatalogError
		decode    *DeserializationError
		probe     *ProbeError
	)
	return errors.As(err, &transport) ||
		errors.As(err, &status) ||
		errors.As(err, &empty) ||
		errors.As(err, &decode) ||
		errors.As(err, &probe)
}
