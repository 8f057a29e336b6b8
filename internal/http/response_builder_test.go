package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestResponseBuilder_JSON(t *testing.T) {
	w := httptest.NewRecorder()

	NewResponse().
		Status(http.StatusCreated).
		Header("Location", "/x").
		JSON(map[string]int{"n": 1}).
		Write(w)

	if w.Code != http.StatusCreated {
		t.Errorf("Status code = %d, want %d", w.Code, http.StatusCreated)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	if w.Header().Get("Location") != "/x" {
		t.Errorf("Location header not set")
	}
	if w.Body.String() != "{\"n\":1}\n" {
		t.Errorf("Body = %q", w.Body.String())
	}
}

func TestResponseBuilder_NoContent(t *testing.T) {
	w := httptest.NewRecorder()
	NewResponse().Status(http.StatusNoContent).JSON("ignored").Write(w)

	if w.Code != http.StatusNoContent || w.Body.Len() != 0 {
		t.Errorf("got %d %q", w.Code, w.Body.String())
	}
}

func TestResponseBuilder_EncodeFailure(t *testing.T) {
	w := httptest.NewRecorder()
	NewResponse().JSON(func() {}).Write(w)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("Status code = %d, want 500", w.Code)
	}
}

func TestErrorResponses(t *testing.T) {
	tests := []struct {
		name     string
		builder  *ResponseBuilder
		wantCode int
		wantType string
	}{
		{"BadRequest", BadRequestError("bad"), http.StatusBadRequest, "bad_request"},
		{"Validation", ValidationFailed("amount", "invalid"), http.StatusUnprocessableEntity, "validation"},
		{"NotFound", NotFoundError("missing"), http.StatusNotFound, "not_found"},
		{"Unavailable", ServiceUnavailableError("loading"), http.StatusServiceUnavailable, "unavailable"},
		{"Internal", InternalServerError("boom"), http.StatusInternalServerError, "internal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.builder.Write(w)

			if w.Code != tt.wantCode {
				t.Errorf("Status code = %d, want %d", w.Code, tt.wantCode)
			}
			var body ErrorBody
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Error.Type != tt.wantType || body.Error.Message == "" {
				t.Errorf("body = %+v", body)
			}
		})
	}
}

func TestServiceUnavailableSetsRetryAfter(t *testing.T) {
	w := httptest.NewRecorder()
	ServiceUnavailableError("loading").Write(w)
	if w.Header().Get("Retry-After") != "1" {
		t.Error("Retry-After header not set")
	}
}
