package types

// Notice is the wire form of a user-facing notification emitted while
// handling a request.
type Notice struct {
	Kind        string `json:"kind"`
	Message     string `json:"message"`
	Position    string `json:"position,omitempty"`
	AutoCloseMS int64  `json:"auto_close_ms,omitempty"`
}

type SuccessEnvelope struct {
	Data          any      `json:"data"`
	Notifications []Notice `json:"notifications,omitempty"`
	Redirect      string   `json:"redirect,omitempty"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error         APIError `json:"error"`
	Notifications []Notice `json:"notifications,omitempty"`
}
