package mallclient

import (
	"encoding/json"
	"strings"
)

// Outcome is the canonical result of one backend call after envelope
// normalization. The backend emits three different success shapes; all of
// them collapse into this one type so downstream code never probes field
// presence.
type Outcome struct {
	Code    int
	Message string
	Payload json.RawMessage
}

// Envelope sentinels used by the standard response shape.
const (
	codeSuccess     = 200
	codeAuthExpired = 401
)

// successKeywords recognize the legacy message-only success shape. The
// list is language-specific by necessity: older services report success
// in prose.
var successKeywords = []string{"成功", "完成", "success", "Success", "SUCCESS"}

// classifyEnvelope normalizes a decoded response body. Priority order is
// fixed: numeric status sentinel, boolean success flag, message keyword
// sniffing, then a generic failure. Blob responses never reach this
// function.
func classifyEnvelope(body []byte) (Outcome, error) {
	var probe struct {
		Code    *int            `json:"code"`
		Success *bool           `json:"success"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &probe); err != nil {
		return Outcome{}, &BusinessError{Message: "request failed"}
	}

	if probe.Code != nil {
		switch *probe.Code {
		case codeSuccess:
			return Outcome{Code: codeSuccess, Message: probe.Message, Payload: probe.Data}, nil
		case codeAuthExpired:
			msg := probe.Message
			if msg == "" {
				msg = "session expired"
			}
			return Outcome{}, &AuthExpiredError{Message: msg}
		}
	}

	if probe.Success != nil {
		if *probe.Success {
			return Outcome{Code: codeSuccess, Message: probe.Message, Payload: probe.Data}, nil
		}
		return Outcome{}, &BusinessError{Message: messageOr(probe.Message, "request failed")}
	}

	if probe.Message != "" {
		for _, kw := range successKeywords {
			if strings.Contains(probe.Message, kw) {
				// Synthesize the standard envelope from the legacy shape.
				return Outcome{Code: codeSuccess, Message: probe.Message, Payload: probe.Data}, nil
			}
		}
		return Outcome{}, &BusinessError{Message: probe.Message}
	}

	return Outcome{}, &BusinessError{Message: "request failed"}
}

func messageOr(msg, fallback string) string {
	if msg != "" {
		return msg
	}
	return fallback
}
