package mallclient

import (
	"errors"
	"testing"
)

func TestClassifyEnvelopeStandardShape(t *testing.T) {
	outcome, err := classifyEnvelope([]byte(`{"code":200,"message":"ok","data":{"id":1}}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome.Code != 200 || string(outcome.Payload) != `{"id":1}` {
		t.Fatalf("outcome = %+v", outcome)
	}
}

func TestClassifyEnvelopeAuthExpired(t *testing.T) {
	_, err := classifyEnvelope([]byte(`{"code":401}`))
	var expired *AuthExpiredError
	if !errors.As(err, &expired) {
		t.Fatalf("expected AuthExpiredError, got %v", err)
	}
	if expired.Message != "session expired" {
		t.Fatalf("default message = %q", expired.Message)
	}

	_, err = classifyEnvelope([]byte(`{"code":401,"message":"token revoked"}`))
	if !errors.As(err, &expired) || expired.Message != "token revoked" {
		t.Fatalf("server message not carried: %v", err)
	}
}

func TestClassifyEnvelopeCodeWinsOverSuccess(t *testing.T) {
	// A contradictory body: the numeric sentinel takes priority.
	outcome, err := classifyEnvelope([]byte(`{"code":200,"success":false,"data":[1]}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(outcome.Payload) != `[1]` {
		t.Fatalf("payload = %s", outcome.Payload)
	}
}

func TestClassifyEnvelopeSuccessFlag(t *testing.T) {
	outcome, err := classifyEnvelope([]byte(`{"success":true,"data":"x"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome.Code != 200 {
		t.Fatalf("code = %d", outcome.Code)
	}

	_, err = classifyEnvelope([]byte(`{"success":false,"message":"out of stock"}`))
	var business *BusinessError
	if !errors.As(err, &business) || business.Message != "out of stock" {
		t.Fatalf("expected BusinessError(out of stock), got %v", err)
	}

	_, err = classifyEnvelope([]byte(`{"success":false}`))
	if !errors.As(err, &business) || business.Message != "request failed" {
		t.Fatalf("expected fallback message, got %v", err)
	}
}

func TestClassifyEnvelopeMessageKeywords(t *testing.T) {
	for _, body := range []string{
		`{"message":"操作成功","data":{"n":1}}`,
		`{"message":"上传完成"}`,
		`{"message":"upload success"}`,
		`{"message":"Success"}`,
	} {
		outcome, err := classifyEnvelope([]byte(body))
		if err != nil {
			t.Fatalf("body %s: unexpected error %v", body, err)
		}
		if outcome.Code != 200 {
			t.Fatalf("body %s: code = %d", body, outcome.Code)
		}
	}

	_, err := classifyEnvelope([]byte(`{"message":"library offline"}`))
	var business *BusinessError
	if !errors.As(err, &business) || business.Message != "library offline" {
		t.Fatalf("expected BusinessError(library offline), got %v", err)
	}
}

func TestClassifyEnvelopeUnrecognized(t *testing.T) {
	var business *BusinessError
	for _, body := range []string{`{}`, `not json at all`, `{"unrelated":true}`} {
		_, err := classifyEnvelope([]byte(body))
		if !errors.As(err, &business) {
			t.Fatalf("body %s: expected BusinessError, got %v", body, err)
		}
	}
}

func TestStatusMessage(t *testing.T) {
	tests := map[int]string{
		400: "invalid request parameters",
		401: "sign-in required",
		403: "access denied",
		404: "requested resource not found",
		500: "internal server error",
		502: "bad gateway",
		503: "service unavailable",
		504: "gateway timeout",
		418: "request failed (418)",
	}
	for status, want := range tests {
		if got := statusMessage(status); got != want {
			t.Fatalf("statusMessage(%d) = %q, want %q", status, got, want)
		}
	}
}
