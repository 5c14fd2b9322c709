package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/phroun/burst-sub000/api"
	"github.com/phroun/burst-sub000/service"
)

func newTestServer(t *testing.T) (*api.Server, *httptest.Server) {
	t.Helper()
	svc := service.New(0)
	srv := api.NewServer(svc, 0)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return srv, ts
}

func postJSON(t *testing.T, url string, body interface{}) *http.Response {
	t.Helper()
	buf, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(buf))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestHandleLoad_ThenStep_AdvancesRegisters(t *testing.T) {
	_, ts := newTestServer(t)

	loadResp := postJSON(t, ts.URL+"/api/load", api.LoadRequest{
		Source: "movi r0, #9\nhalt\n",
	})
	if loadResp.StatusCode != http.StatusOK {
		t.Fatalf("load status = %d, want 200", loadResp.StatusCode)
	}

	stepResp := postJSON(t, ts.URL+"/api/step", nil)
	var step api.StepResponse
	if err := json.NewDecoder(stepResp.Body).Decode(&step); err != nil {
		t.Fatalf("decode step response: %v", err)
	}
	if step.Error != "" {
		t.Fatalf("step error: %s", step.Error)
	}
	if step.Registers.R[0] != 9 {
		t.Errorf("r0 = %d, want 9", step.Registers.R[0])
	}
}

func TestHandleBreakpoint_TogglesAndReportsEnabled(t *testing.T) {
	_, ts := newTestServer(t)
	postJSON(t, ts.URL+"/api/load", api.LoadRequest{Source: "nop\nhalt\n"})

	resp := postJSON(t, ts.URL+"/api/breakpoint", api.BreakpointRequest{Address: 0})
	var info struct {
		Address uint32 `json:"address"`
		Enabled bool   `json:"enabled"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !info.Enabled {
		t.Error("expected breakpoint enabled after first toggle")
	}
}

func TestHandleDisassemble_RejectsNonGet(t *testing.T) {
	_, ts := newTestServer(t)
	resp := postJSON(t, ts.URL+"/api/disassemble", nil)
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", resp.StatusCode)
	}
}

func TestHandleAssembleLine_ReturnsEncodedBytes(t *testing.T) {
	_, ts := newTestServer(t)
	resp := postJSON(t, ts.URL+"/api/assemble-line", api.AssembleLineRequest{Line: "movi r0, #5"})
	var out api.AssembleLineResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Error != "" {
		t.Fatalf("assemble-line error: %s", out.Error)
	}
	if out.Size == 0 {
		t.Error("expected non-zero size")
	}
}

func TestHealthEndpoint(t *testing.T) {
	_, ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}
