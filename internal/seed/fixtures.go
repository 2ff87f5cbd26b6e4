// Package seed creates registration requests for development and demo
// databases, either from YAML fixture files or from generated data.
package seed

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Fixtures is the document layout of a seed file.
//
//	requests:
//	  - username: alice
//	    password: correct-horse
//	    email: alice@example.com
//	    status: APPROVED
type Fixtures struct {
	Requests []RequestFixture `yaml:"requests"`
}

// RequestFixture describes one registration request. An empty Status leaves the
// request PENDING; APPROVED or REJECTED are applied as an administrator decision.
type RequestFixture struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Email    string `yaml:"email"`
	Status   string `yaml:"status"`
}

// LoadFixtures decodes a fixture document. Unknown keys are rejected so typos
// in a seed file fail loudly.
func LoadFixtures(r io.Reader) (*Fixtures, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var fx Fixtures
	if err := dec.Decode(&fx); err != nil {
		if err == io.EOF {
			return &fx, nil
		}
		return nil, fmt.Errorf("decode fixtures: %w", err)
	}
	return &fx, nil
}

// LoadFixtureFile reads fixtures from path.
func LoadFixtureFile(path string) (*Fixtures, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open fixtures: %w", err)
	}
	defer f.Close()
	return LoadFixtures(f)
}
