package testkit

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// AssertStatusCode checks the response code.
func AssertStatusCode(t *testing.T, scenario *Scenario, got int) {
	t.Helper()
	assert.Equal(t, scenario.ExpectedCode, got,
		"[%s] HTTP status code mismatch", scenario.Name)
}

// AssertHeaders checks every expected header. An empty expected value means
// the header must be absent.
func AssertHeaders(t *testing.T, scenario *Scenario, got http.Header) {
	t.Helper()
	for name, want := range scenario.ExpectedHeaders {
		if want == "" {
			assert.Empty(t, got.Values(name), "[%s] header %s must be absent", scenario.Name, name)
			continue
		}
		assert.Equal(t, want, got.Get(name), "[%s] header %s mismatch", scenario.Name, name)
	}
}

// AssertJSONBody compares the response with the expected JSON after decoding
// both, so key order and whitespace never matter. With PartialResponse only
// the keys present in expected are compared, recursively.
func AssertJSONBody(t *testing.T, scenario *Scenario, expected, actual []byte) {
	t.Helper()
	if len(expected) == 0 {
		return
	}

	var expVal, actVal interface{}
	require.NoError(t,
		json.Unmarshal(expected, &expVal),
		"[%s] expected response is not valid JSON", scenario.Name,
	)
	if !assert.NoError(t,
		json.Unmarshal(actual, &actVal),
		"[%s] actual response is not valid JSON\nbody: %s", scenario.Name, string(actual),
	) {
		return
	}

	if scenario.PartialResponse {
		actVal = project(expVal, actVal)
	}
	assert.Equal(t, expVal, actVal, "[%s] response body mismatch", scenario.Name)
}

// project trims actual down to the shape of expected.
func project(expected, actual interface{}) interface{} {
	switch exp := expected.(type) {
	case map[string]interface{}:
		act, ok := actual.(map[string]interface{})
		if !ok {
			return actual
		}
		out := make(map[string]interface{}, len(exp))
		for k, ev := range exp {
			if av, ok := act[k]; ok {
				out[k] = project(ev, av)
			}
		}
		return out
	case []interface{}:
		act, ok := actual.([]interface{})
		if !ok || len(act) != len(exp) {
			return actual
		}
		out := make([]interface{}, len(act))
		for i := range act {
			out[i] = project(exp[i], act[i])
		}
		return out
	default:
		return actual
	}
}
