package models

import (
	"errors"
	"fmt"
	"net/http"
)

// Pipeline stages, used to label remote failures.
const (
	StageSTT  = "stt"
	StageChat = "chat"
	StageTTS  = "tts"
)

var stageNames = map[string]string{
	StageSTT:  "Speech-to-text",
	StageChat: "Chat API",
	StageTTS:  "Text-to-speech",
}

var stageServiceNames = map[string]string{
	StageSTT:  "Speech-to-text",
	StageChat: "Chat",
	StageTTS:  "Text-to-speech",
}

// BadRequestError reports invalid client input. It is raised before any remote call.
type BadRequestError struct {
	Message string
}

func (e *BadRequestError) Error() string {
	return e.Message
}

// RemoteServiceError reports an upstream that answered with a non-success status
// or a body that could not be understood.
type RemoteServiceError struct {
	Stage  string
	Status int // status surfaced to our caller
	// UpstreamStatus is the status the upstream answered with, 0 when it answered 2xx.
	UpstreamStatus int
	Body           string
}

func (e *RemoteServiceError) Error() string {
	return fmt.Sprintf("%s failed: %s", stageLabel(stageNames, e.Stage), e.Body)
}

// RemoteUnavailableError reports a transport failure: timeout, refused connection, DNS.
type RemoteUnavailableError struct {
	Stage  string
	Status int
	Err    error
}

func (e *RemoteUnavailableError) Error() string {
	return fmt.Sprintf("%s service unreachable", stageLabel(stageServiceNames, e.Stage))
}

func (e *RemoteUnavailableError) Unwrap() error {
	return e.Err
}

// ConfigurationError reports a missing or invalid startup setting.
type ConfigurationError struct {
	Key     string
	Message string
}

func (e *ConfigurationError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("configuration error: %s: %s", e.Key, e.Message)
	}
	return fmt.Sprintf("configuration error: %s is not set", e.Key)
}

// NewBadRequest builds a BadRequestError.
func NewBadRequest(msg string) error {
	return &BadRequestError{Message: msg}
}

// NewRemoteServiceError builds a RemoteServiceError surfaced as 500.
func NewRemoteServiceError(stage string, upstreamStatus int, body string) error {
	return &RemoteServiceError{
		Stage:          stage,
		Status:         http.StatusInternalServerError,
		UpstreamStatus: upstreamStatus,
		Body:           body,
	}
}

// NewRemoteUnavailableError builds a RemoteUnavailableError surfaced as 503.
func NewRemoteUnavailableError(stage string, err error) error {
	return &RemoteUnavailableError{
		Stage:  stage,
		Status: http.StatusServiceUnavailable,
		Err:    err,
	}
}

// StatusCode maps an error from the pipeline to the HTTP status returned to the client.
func StatusCode(err error) int {
	if err == nil {
		return http.StatusOK
	}
	var badReq *BadRequestError
	if errors.As(err, &badReq) {
		return http.StatusBadRequest
	}
	var svcErr *RemoteServiceError
	if errors.As(err, &svcErr) {
		return svcErr.Status
	}
	var unavailable *RemoteUnavailableError
	if errors.As(err, &unavailable) {
		return unavailable.Status
	}
	return http.StatusInternalServerError
}

// PublicMessage returns the text safe to put in an error response.
// Unknown errors are not leaked.
func PublicMessage(err error) string {
	var badReq *BadRequestError
	if errors.As(err, &badReq) {
		return badReq.Error()
	}
	var svcErr *RemoteServiceError
	if errors.As(err, &svcErr) {
		return svcErr.Error()
	}
	var unavailable *RemoteUnavailableError
	if errors.As(err, &unavailable) {
		return unavailable.Error()
	}
	return "internal error"
}

// StageOf returns the stage a remote error belongs to, or "" for other errors.
func StageOf(err error) string {
	var svcErr *RemoteServiceError
	if errors.As(err, &svcErr) {
		return svcErr.Stage
	}
	var unavailable *RemoteUnavailableError
	if errors.As(err, &unavailable) {
		return unavailable.Stage
	}
	return ""
}

func stageLabel(names map[string]string, stage string) string {
	if name, ok := names[stage]; ok {
		return name
	}
	return stage
}
