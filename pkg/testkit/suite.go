package testkit

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// ConfigEntry is one REST resource in a master suite file.
type ConfigEntry struct {
	ServiceName       string `json:"serviceName"`
	FilePath          string `json:"filePath"`
	ScenariosFileName string `json:"scenariosFileName"`
	ServiceURL        string `json:"serviceUrl"`     // default requestUrl
	HTTPMethodType    string `json:"httpMethodType"` // default requestMethod
}

// RunSuite runs every entry of the master config against handler. The
// scenarios of each entry run in order; requestUrl and requestMethod default
// to the entry's serviceUrl and httpMethodType.
func RunSuite(t *testing.T, masterConfigPath string, handler http.Handler) {
	t.Helper()

	absMasterPath, err := filepath.Abs(masterConfigPath)
	if err != nil {
		t.Fatalf("testkit: resolve master config path %q: %v", masterConfigPath, err)
	}

	data, err := os.ReadFile(absMasterPath)
	if err != nil {
		t.Fatalf("testkit: read master config %q: %v", absMasterPath, err)
	}

	var entries []ConfigEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		t.Fatalf("testkit: parse master config %q: %v", absMasterPath, err)
	}

	baseDir := filepath.Dir(absMasterPath)
	for _, entry := range entries {
		t.Run(entry.ServiceName, func(t *testing.T) {
			url := entry.ServiceURL
			if url != "" && !strings.HasPrefix(url, "/") {
				url = "/" + url
			}

			path := filepath.Join(baseDir, entry.FilePath, entry.ScenariosFileName)
			scenarios, err := loadArray(path, func(s *Scenario) {
				if s.RequestURL == "" {
					s.RequestURL = url
				}
				if s.RequestMethod == "" {
					s.RequestMethod = strings.ToUpper(entry.HTTPMethodType)
				}
			})
			if err != nil {
				t.Fatalf("%v", err)
			}

			for _, s := range scenarios {
				if !t.Run(s.Name, func(t *testing.T) { Execute(t, handler, s) }) {
					return
				}
			}
		})
	}
}
