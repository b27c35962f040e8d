// Package protocol defines the room-scoped event protocol: JSON envelopes
// exchanged over a signal connection, discriminated by the "event" field.
package protocol

import "encoding/json"

// Inbound events, client -> server.
const (
	EventJoin           = "join"
	EventLeaveRoom      = "leaveRoom"
	EventCodeChange     = "codeChange"
	EventLanguageChange = "languageChange"
	EventTyping         = "typing"
	EventCompileCode    = "compileCode"
)

// Outbound events, server -> client.
const (
	EventUserJoined        = "userJoined"
	EventCodeUpdate        = "codeUpdate"
	EventLanguageUpdate    = "languageUpdate"
	EventUserTyping        = "userTyping"
	EventUserTypingStopped = "userTypingStopped"
	EventCodeResponse      = "codeResponse"
	EventError             = "error"
)

// Envelope is the minimal view used to dispatch an inbound frame.
type Envelope struct {
	Event string `json:"event"`
}

type JoinPayload struct {
	RoomID      string `json:"roomId"`
	DisplayName string `json:"displayName"`
}

type CodeChangePayload struct {
	RoomID string `json:"roomId"`
	Code   string `json:"code"`
}

type LanguageChangePayload struct {
	RoomID   string `json:"roomId"`
	Language string `json:"language"`
}

type TypingPayload struct {
	RoomID      string `json:"roomId"`
	DisplayName string `json:"displayName"`
}

type CompileCodePayload struct {
	RoomID   string `json:"roomId"`
	Code     string `json:"code"`
	Language string `json:"language"`
	Version  string `json:"version"`
}

// RunResult is the execution collaborator's run report as forwarded to
// clients. A nonzero exit code is still a successful run.
type RunResult struct {
	Output string `json:"output"`
	Stderr string `json:"stderr,omitempty"`
	Code   int    `json:"code"`
}

func UserJoined(users []string) []byte {
	return marshal(struct {
		Event string   `json:"event"`
		Users []string `json:"users"`
	}{EventUserJoined, users})
}

func CodeUpdate(code string) []byte {
	return marshal(struct {
		Event string `json:"event"`
		Code  string `json:"code"`
	}{EventCodeUpdate, code})
}

func LanguageUpdate(language string) []byte {
	return marshal(struct {
		Event    string `json:"event"`
		Language string `json:"language"`
	}{EventLanguageUpdate, language})
}

func UserTyping(user string) []byte {
	return marshal(struct {
		Event string `json:"event"`
		User  string `json:"user"`
	}{EventUserTyping, user})
}

func UserTypingStopped(user string) []byte {
	return marshal(struct {
		Event string `json:"event"`
		User  string `json:"user"`
	}{EventUserTypingStopped, user})
}

func CodeResponseRun(run RunResult) []byte {
	return marshal(struct {
		Event string    `json:"event"`
		Run   RunResult `json:"run"`
	}{EventCodeResponse, run})
}

// CodeResponseError is the failure payload, distinct from a successful run
// that happened to produce empty output.
func CodeResponseError(msg string) []byte {
	return marshal(struct {
		Event string `json:"event"`
		Error string `json:"error"`
	}{EventCodeResponse, msg})
}

func Error(msg string) []byte {
	return marshal(struct {
		Event string `json:"event"`
		Error string `json:"error"`
	}{EventError, msg})
}

// marshal never fails for the flat shapes above.
func marshal(v any) []byte {
	b, _ := json.Marshal(v)
	return b
}
