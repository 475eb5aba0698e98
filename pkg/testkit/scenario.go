// Package testkit drives REST API tests from JSON scenario files.
//
// Each scenario describes one request (method, URL, body) and what must come
// back (status code, headers, body). Files live next to the _test.go files:
//
//	testdata/
//	  create_product.json        ← scenario
//	  create_product_req.json    ← request body
//	  create_product_res.json    ← expected response body
//
// Scenarios that depend on each other (create, then update, then read) go in
// one array file and run in order against the same handler:
//
//	func TestProductLifecycle(t *testing.T) {
//	    testkit.RunSequence(t, handler, "testdata/product_lifecycle.json")
//	}
package testkit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// ─── Schema ───────────────────────────────────────────────────────────────────

// Scenario describes a single REST API test case.
type Scenario struct {
	Name        string `json:"name"`
	Description string `json:"description"`

	RequestMethod   string            `json:"requestMethod"`   // GET, POST, PUT, DELETE
	RequestURL      string            `json:"requestUrl"`      // e.g. /api/products
	RequestFileName string            `json:"requestFileName"` // request body file, relative to the scenario
	RequestBody     json.RawMessage   `json:"requestBody"`     // inline request body; wins over requestFileName
	Headers         map[string]string `json:"headers"`

	ExpectedCode       int               `json:"expectedCode"`
	ExpectedStatusCode int               `json:"expectedStatusCode"` // alias for expectedCode
	ExpectedHeaders    map[string]string `json:"expectedHeaders"`    // exact values; "" asserts the header is absent
	ResponseFileName   string            `json:"responseFileName"`
	ResponseBody       json.RawMessage   `json:"responseBody"` // inline expected body; wins over responseFileName

	// PartialResponse compares only the keys present in the expected body.
	PartialResponse bool `json:"partialResponse"`

	dir string
}

// ─── Loading ──────────────────────────────────────────────────────────────────

// LoadScenario reads and validates a scenario from a JSON file.
func LoadScenario(path string) (*Scenario, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("testkit: resolve path %q: %w", path, err)
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("testkit: read %q: %w", abs, err)
	}

	var s Scenario
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("testkit: parse %q: %w", abs, err)
	}

	s.dir = filepath.Dir(abs)
	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("testkit: invalid scenario %q: %w", abs, err)
	}
	return &s, nil
}

// LoadScenarioArray reads an ordered array of scenarios from one file.
func LoadScenarioArray(path string) ([]*Scenario, error) {
	return loadArray(path, nil)
}

// loadArray is LoadScenarioArray with defaults applied to every scenario
// before validation.
func loadArray(path string, defaults func(*Scenario)) ([]*Scenario, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("testkit: resolve scenario array path %q: %w", path, err)
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("testkit: read scenario array %q: %w", abs, err)
	}

	var scenarios []*Scenario
	if err := json.Unmarshal(data, &scenarios); err != nil {
		return nil, fmt.Errorf("testkit: parse scenario array %q: %w", abs, err)
	}

	for i, s := range scenarios {
		s.dir = filepath.Dir(abs)
		if defaults != nil {
			defaults(s)
		}
		if err := s.validate(); err != nil {
			return nil, fmt.Errorf("testkit: invalid scenario %d in %q: %w", i, abs, err)
		}
	}
	return scenarios, nil
}

// LoadAllFromDir loads every *.json file in dir as a Scenario.
// Files that fail to parse are collected as errors.
func LoadAllFromDir(dir string) ([]*Scenario, []error) {
	entries, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil || len(entries) == 0 {
		return nil, []error{fmt.Errorf("testkit: no scenario files found in %q", dir)}
	}

	var (
		scenarios []*Scenario
		errs      []error
	)
	for _, path := range entries {
		s, err := LoadScenario(path)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, errs
}

func (s *Scenario) validate() error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.RequestURL == "" {
		return fmt.Errorf("requestUrl is required")
	}
	if s.ExpectedCode == 0 {
		s.ExpectedCode = s.ExpectedStatusCode
	}
	if s.ExpectedCode == 0 {
		return fmt.Errorf("expectedCode is required")
	}
	if s.RequestMethod == "" {
		s.RequestMethod = "GET"
	}
	return nil
}

// RequestBodyBytes returns the request body, or nil when there is none.
func (s *Scenario) RequestBodyBytes() ([]byte, error) {
	if len(s.RequestBody) > 0 {
		return s.RequestBody, nil
	}
	if s.RequestFileName == "" {
		return nil, nil
	}
	return os.ReadFile(s.resolve(s.RequestFileName))
}

// ExpectedBodyBytes returns the expected response body, or nil when the body
// is not asserted.
func (s *Scenario) ExpectedBodyBytes() ([]byte, error) {
	if len(s.ResponseBody) > 0 {
		return s.ResponseBody, nil
	}
	if s.ResponseFileName == "" {
		return nil, nil
	}
	return os.ReadFile(s.resolve(s.ResponseFileName))
}

func (s *Scenario) resolve(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(s.dir, name)
}
