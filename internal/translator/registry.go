package translator

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// Options carries what the provider constructors need. Client is shared by
// all HTTP providers built from the same Options.
type Options struct {
	LibreTranslateURL    string
	LibreTranslateAPIKey string
	MyMemoryURL          string
	MyMemoryEmail        string
	GoogleCredentials    string
	Client               *http.Client
}

var builders = map[string]func(Options) TranslationService{
	"libretranslate": func(o Options) TranslationService {
		return NewLibreTranslateService(o.LibreTranslateURL, o.LibreTranslateAPIKey, o.Client)
	},
	"mymemory": func(o Options) TranslationService {
		return NewMyMemoryService(o.MyMemoryURL, o.MyMemoryEmail, o.Client)
	},
	"google": func(o Options) TranslationService {
		return NewGoogleService(o.GoogleCredentials)
	},
}

// ServiceNames lists the providers Build knows about.
func ServiceNames() []string {
	names := make([]string, 0, len(builders))
	for name := range builders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Build constructs a provider by name.
func Build(name string, opts Options) (TranslationService, error) {
	build, ok := builders[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("unknown service: %q (available: %s)", name, strings.Join(ServiceNames(), ", "))
	}
	if opts.Client == nil {
		opts.Client = NewHTTPClient(0)
	}
	return build(opts), nil
}
