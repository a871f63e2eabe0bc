package userinfo

import (
	"sort"
	"strings"
)

// Registry resuelve el Extractor por nombre de provider. Es inmutable
// después de construido, por lo que es seguro compartirlo entre goroutines.
type Registry struct {
	extractors map[string]Extractor
}

// NewRegistry indexa los extractores por su nombre en minúsculas.
func NewRegistry(extractors ...Extractor) *Registry {
	r := &Registry{extractors: make(map[string]Extractor, len(extractors))}
	for _, e := range extractors {
		r.extractors[strings.ToLower(e.Provider())] = e
	}
	return r
}

// DefaultRegistry contiene google, kakao y naver.
func DefaultRegistry() *Registry {
	return NewRegistry(Google{}, Kakao{}, Naver{})
}

// Get busca el extractor sin distinguir mayúsculas.
func (r *Registry) Get(providerName string) (Extractor, error) {
	if e, ok := r.extractors[strings.ToLower(strings.TrimSpace(providerName))]; ok {
		return e, nil
	}
	return nil, &UnsupportedProviderError{Name: providerName}
}

// Providers lista los nombres registrados, ordenados.
func (r *Registry) Providers() []string {
	out := make([]string, 0, len(r.extractors))
	for name := range r.extractors {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
