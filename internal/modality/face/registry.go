package face

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/crimson-sun/attune/internal/httpclient"
)

// Settings carries backend options read from configuration.
type Settings struct {
	Endpoint string
	Token    string
	Timeout  time.Duration
}

// Constructor creates a face Classifier from settings.
type Constructor func(Settings) (Classifier, error)

var (
	registryMu sync.RWMutex
	registry   = map[string]Constructor{
		"score": func(Settings) (Classifier, error) { return NewScore(), nil },
		"cues":  func(Settings) (Classifier, error) { return NewCues(), nil },
		"remote": func(s Settings) (Classifier, error) {
			if s.Endpoint == "" {
				return nil, errors.New("remote face backend: endpoint required")
			}
			var opts []httpclient.Option
			if s.Timeout > 0 {
				opts = append(opts, httpclient.WithTimeout(s.Timeout))
			}
			return NewRemote(s.Endpoint, s.Token, opts...), nil
		},
	}
)

// Register adds a backend constructor under name, replacing any existing one.
func Register(name string, ctor Constructor) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = ctor
}

// Get returns the constructor registered under name.
func Get(name string) (Constructor, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	ctor, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown face backend: %s", name)
	}
	return ctor, nil
}

// New builds the named backend.
func New(name string, s Settings) (Classifier, error) {
	ctor, err := Get(name)
	if err != nil {
		return nil, err
	}
	return ctor(s)
}

// Backends returns the registered backend names, sorted.
func Backends() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
