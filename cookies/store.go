// Package cookies reads per-domain cookie files persisted by external
// tooling. The store is a read-only collaborator: the acquisition core
// never writes to it.
package cookies

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Cookie is one persisted cookie record. Files hold a JSON array of these.
type Cookie struct {
	Name     string  `json:"name"`
	Value    string  `json:"value"`
	Domain   string  `json:"domain"`
	Path     string  `json:"path,omitempty"`
	Expires  float64 `json:"expires,omitempty"`
	Secure   bool    `json:"secure,omitempty"`
	HTTPOnly bool    `json:"httpOnly,omitempty"`
}

// Store loads cookie sets from <dir>/<domain>.json files.
type Store struct {
	dir string
}

// NewStore creates a Store rooted at dir. The directory does not have to
// exist; a missing directory simply yields no cookies.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// ForDomain returns the cookies persisted for a domain, trying the exact
// hostname first and then the hostname without a "www." prefix. A missing
// file is not an error and yields nil.
func (s *Store) ForDomain(domain string) ([]Cookie, error) {
	for _, name := range s.candidates(domain) {
		data, err := os.ReadFile(filepath.Join(s.dir, name+".json"))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("cookies: read %s: %w", name, err)
		}
		var cks []Cookie
		if err := json.Unmarshal(data, &cks); err != nil {
			return nil, fmt.Errorf("cookies: parse %s: %w", name, err)
		}
		return cks, nil
	}
	return nil, nil
}

func (s *Store) candidates(domain string) []string {
	domain = strings.ToLower(strings.TrimSpace(domain))
	if domain == "" {
		return nil
	}
	names := []string{domain}
	if stripped := strings.TrimPrefix(domain, "www."); stripped != domain {
		names = append(names, stripped)
	}
	return names
}
