package testkit

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSuiteRunner(t *testing.T) {
	masterConfig := []ConfigEntry{
		{
			ServiceName:       "Echo",
			FilePath:          "echo",
			ScenariosFileName: "echo_scenarios.json",
			ServiceURL:        "api/echo",
			HTTPMethodType:    "post",
		},
	}
	scenarios := []map[string]any{
		{
			"name":             "EchoFromFiles",
			"expectedCode":     200,
			"requestFileName":  "req.json",
			"responseFileName": "res.json",
		},
		{
			"name":               "EchoInline",
			"expectedStatusCode": 200,
			"requestBody":        map[string]any{"message": "inline"},
			"responseBody":       map[string]any{"message": "inline"},
			"expectedHeaders":    map[string]string{"X-Echo": "POST /api/echo", "X-Missing": ""},
		},
	}

	dir := t.TempDir()
	masterPath := filepath.Join(dir, "test_scenarios.json")
	masterData, _ := json.Marshal(masterConfig)
	require.NoError(t, os.WriteFile(masterPath, masterData, 0o644))

	apiDir := filepath.Join(dir, "echo")
	require.NoError(t, os.MkdirAll(apiDir, 0o755))
	scenarioData, _ := json.Marshal(scenarios)
	require.NoError(t, os.WriteFile(filepath.Join(apiDir, "echo_scenarios.json"), scenarioData, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(apiDir, "req.json"), []byte(`{"message": "hello"}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(apiDir, "res.json"), []byte(`{"message":"hello"}`), 0o644))

	echo := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Echo", r.Method+" "+r.URL.Path)
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(body)
	})

	RunSuite(t, masterPath, echo)
}
