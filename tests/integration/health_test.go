//go:build integration

package integration

import (
	"net/http"
	"testing"
)

func TestLiveness(t *testing.T) {
	resp := doGet(t, "/livez")

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("livez status = %d, want 200", resp.StatusCode)
	}
	var body healthResponse
	decodeBody(t, resp, &body)
	if body.Status != "ok" {
		t.Errorf("livez status = %q, want ok", body.Status)
	}
}

func TestReadiness(t *testing.T) {
	resp := doGet(t, "/readyz")

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("readyz status = %d, want 200", resp.StatusCode)
	}
	var body healthResponse
	decodeBody(t, resp, &body)
	if body.Status != "ok" {
		t.Errorf("readyz status = %q, want ok (checks: %v)", body.Status, body.Checks)
	}
}
