package testkit

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
)

// Run executes a single scenario file against handler.
func Run(t *testing.T, handler http.Handler, scenarioPath string) {
	t.Helper()

	s, err := LoadScenario(scenarioPath)
	if err != nil {
		t.Fatalf("testkit: load scenario %q: %v", scenarioPath, err)
	}

	t.Run(s.Name, func(t *testing.T) {
		Execute(t, handler, s)
	})
}

// RunDir runs every *.json scenario file in dir as a subtest.
// Files that fail to parse are reported as test failures.
func RunDir(t *testing.T, handler http.Handler, dir string) {
	t.Helper()

	entries, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil || len(entries) == 0 {
		t.Fatalf("testkit: no scenario files found in %q", dir)
	}

	for _, path := range entries {
		s, err := LoadScenario(path)
		if err != nil {
			t.Errorf("testkit: load %q: %v", path, err)
			continue
		}
		t.Run(s.Name, func(t *testing.T) {
			Execute(t, handler, s)
		})
	}
}

// RunSequence runs the scenarios of one array file in order. A failing step
// stops the sequence, since later steps depend on its state.
func RunSequence(t *testing.T, handler http.Handler, path string) {
	t.Helper()

	scenarios, err := LoadScenarioArray(path)
	if err != nil {
		t.Fatalf("%v", err)
	}
	for _, s := range scenarios {
		if !t.Run(s.Name, func(t *testing.T) { Execute(t, handler, s) }) {
			return
		}
	}
}

// Execute fires s against handler and asserts the response. It returns the
// recorder for further checks.
func Execute(t *testing.T, handler http.Handler, s *Scenario) *httptest.ResponseRecorder {
	t.Helper()

	body, err := s.RequestBodyBytes()
	if err != nil {
		t.Fatalf("[%s] read request body: %v", s.Name, err)
	}
	var reqBody io.Reader
	if body != nil {
		reqBody = bytes.NewReader(body)
	}

	req := httptest.NewRequest(strings.ToUpper(s.RequestMethod), s.RequestURL, reqBody)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for k, v := range s.Headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	AssertStatusCode(t, s, rec.Code)
	AssertHeaders(t, s, rec.Header())

	expected, err := s.ExpectedBodyBytes()
	if err != nil {
		t.Errorf("[%s] read expected body: %v", s.Name, err)
	} else if expected != nil {
		AssertJSONBody(t, s, expected, rec.Body.Bytes())
	}
	return rec
}

// DumpScenario prints a one-line summary of s; handy while writing fixtures.
func DumpScenario(s *Scenario) {
	fmt.Printf("Scenario: %s\n  %s %s → %d\n", s.Name, s.RequestMethod, s.RequestURL, s.ExpectedCode)
}
