package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polarmd/dpinput/internal/config"
	"github.com/polarmd/dpinput/internal/inputstore"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	store, err := inputstore.NewSqliteStore(filepath.Join(t.TempDir(), "inputs.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	cfg := config.DefaultServiceConfig()
	cfg.RateLimitRPS = 1000
	cfg.RateLimitBurst = 1000

	ts := httptest.NewServer(NewServer(cfg, store).Router())
	t.Cleanup(ts.Close)
	return ts
}

func exampleJSON(t *testing.T) []byte {
	t.Helper()
	raw, err := config.RenderInput(config.ExampleInput(), config.FormatJSON)
	require.NoError(t, err)
	return raw
}

func postJSON(t *testing.T, url string, body []byte) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decodeInto(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(HeaderRequestID), "request ID header must be set")
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestValidate_ValidDocument(t *testing.T) {
	ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/v1/validate", exampleJSON(t))
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var vr ValidateResponse
	decodeInto(t, resp, &vr)
	assert.True(t, vr.Valid)
	assert.Equal(t, []string{"Ni", "O"}, vr.Species)
	assert.True(t, vr.HasSpin)
	assert.Equal(t, []string{"Ni", "O", "Ni_spin"}, vr.ExtendedTypeMap)
}

func TestValidate_YAMLDocument(t *testing.T) {
	ts := newTestServer(t)
	raw, err := config.RenderInput(config.ExampleInput(), config.FormatYAML)
	require.NoError(t, err)

	resp, err := http.Post(ts.URL+"/v1/validate", "application/yaml", bytes.NewReader(raw))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestValidate_InvalidDocument(t *testing.T) {
	ts := newTestServer(t)

	in := config.ExampleInput()
	in.Model.Descriptor.RcutSmth = 99
	in.Training.NumbSteps = 0
	raw, err := config.RenderInput(in, config.FormatJSON)
	require.NoError(t, err)

	resp := postJSON(t, ts.URL+"/v1/validate", raw)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	var vr ValidateResponse
	decodeInto(t, resp, &vr)
	assert.False(t, vr.Valid)
	require.NotEmpty(t, vr.Errors)

	fields := map[string]bool{}
	for _, fe := range vr.Errors {
		fields[fe.Field] = true
	}
	assert.True(t, fields["model.descriptor.rcut_smth"], "errors: %v", vr.Errors)
	assert.True(t, fields["training.numb_steps"], "errors: %v", vr.Errors)
}

func TestMigrate_V1Document(t *testing.T) {
	ts := newTestServer(t)

	legacy := []byte(`{
		"model": {
			"descriptor": {"type": "se_a", "sel": [120, 60], "rcut": 6.0, "rcut_smth": 5.6, "neuron": [25, 50, 100]},
			"fitting_net": {"neuron": [240, 240, 240]}
		},
		"learning_rate": {"type": "exp", "start_lr": 0.001, "decay_rate": 0.95, "decay_steps": 5000},
		"loss": {"start_pref_e": 0.02, "limit_pref_e": 1},
		"training": {"systems": ["data/train"], "batch_size": 1, "stop_batch": 100000, "numb_test": 10}
	}`)

	resp := postJSON(t, ts.URL+"/v1/migrate", legacy)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var mr MigrateResponse
	decodeInto(t, resp, &mr)
	assert.Equal(t, "v1", mr.FromVersion)
	assert.NotEmpty(t, mr.Conversions)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(mr.Document, &doc))
	tr := doc["training"].(map[string]any)
	_, hasTD := tr["training_data"]
	assert.True(t, hasTD)
	_, hasSystems := tr["systems"]
	assert.False(t, hasSystems)
}

func TestMigrate_GarbageRejected(t *testing.T) {
	ts := newTestServer(t)
	resp := postJSON(t, ts.URL+"/v1/migrate", []byte(`{"training": 7`))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPreview(t *testing.T) {
	ts := newTestServer(t)

	req, err := json.Marshal(PreviewRequest{Samples: 5, Document: exampleJSON(t)})
	require.NoError(t, err)

	resp := postJSON(t, ts.URL+"/v1/schedule/preview", req)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Samples []struct {
			Step  int                `json:"step"`
			LR    float64            `json:"lr"`
			Prefs map[string]float64 `json:"prefs"`
		} `json:"samples"`
	}
	decodeInto(t, resp, &out)
	require.Len(t, out.Samples, 5)
	assert.Equal(t, 0, out.Samples[0].Step)
	assert.InEpsilon(t, 1e-3, out.Samples[0].LR, 1e-9)
	assert.Contains(t, out.Samples[0].Prefs, "force_mag")
}

func TestPreview_MissingDocument(t *testing.T) {
	ts := newTestServer(t)
	resp := postJSON(t, ts.URL+"/v1/schedule/preview", []byte(`{"samples": 5}`))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRegisterListGet(t *testing.T) {
	ts := newTestServer(t)

	req, err := json.Marshal(RegisterRequest{Name: "nio-afm", Document: exampleJSON(t)})
	require.NoError(t, err)

	resp := postJSON(t, ts.URL+"/v1/inputs", req)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var rec inputstore.Record
	decodeInto(t, resp, &rec)
	require.NotEmpty(t, rec.ID)
	assert.Equal(t, "nio-afm", rec.Name)
	assert.NotEmpty(t, rec.Checksum)

	// Duplicate content under a new name is rejected by checksum.
	req2, err := json.Marshal(RegisterRequest{Name: "other", Document: exampleJSON(t)})
	require.NoError(t, err)
	resp2 := postJSON(t, ts.URL+"/v1/inputs", req2)
	assert.Equal(t, http.StatusConflict, resp2.StatusCode)

	// List shows the record.
	listResp, err := http.Get(ts.URL + "/v1/inputs")
	require.NoError(t, err)
	defer func() { _ = listResp.Body.Close() }()
	var list []inputstore.Record
	decodeInto(t, listResp, &list)
	require.Len(t, list, 1)
	assert.Equal(t, rec.ID, list[0].ID)

	// Get returns the stored document.
	getResp, err := http.Get(ts.URL + "/v1/inputs/" + rec.ID)
	require.NoError(t, err)
	defer func() { _ = getResp.Body.Close() }()
	require.Equal(t, http.StatusOK, getResp.StatusCode)

	var full struct {
		ID       string          `json:"id"`
		Document json.RawMessage `json:"document"`
	}
	decodeInto(t, getResp, &full)
	assert.Equal(t, rec.ID, full.ID)
	assert.NotEmpty(t, full.Document)
}

func TestRegister_InvalidDocument(t *testing.T) {
	ts := newTestServer(t)

	in := config.ExampleInput()
	in.Model.TypeMap = nil
	raw, err := config.RenderInput(in, config.FormatJSON)
	require.NoError(t, err)

	req, err := json.Marshal(RegisterRequest{Name: "broken", Document: raw})
	require.NoError(t, err)

	resp := postJSON(t, ts.URL+"/v1/inputs", req)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestGet_NotFound(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/v1/inputs/no-such-id")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
