package catalog

import (
	"context"
	_ "embed"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

//go:embed products.json
var embeddedSeed []byte

const maxSeedBytes = 8 << 20

// SeedSource fetches the raw seed document ({"products":[...]}).
type SeedSource interface {
	Name() string
	Fetch(ctx context.Context) ([]byte, error)
}

type EmbeddedSeed struct{}

func (EmbeddedSeed) Name() string { return "embedded" }

func (EmbeddedSeed) Fetch(ctx context.Context) ([]byte, error) {
	return append([]byte(nil), embeddedSeed...), nil
}

type FileSeed struct {
	Path string
}

func (s FileSeed) Name() string { return s.Path }

func (s FileSeed) Fetch(ctx context.Context) ([]byte, error) {
	return os.ReadFile(s.Path)
}

type HTTPSeed struct {
	URL    string
	Client *http.Client
}

func (s HTTPSeed) Name() string { return s.URL }

func (s HTTPSeed) Fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, err
	}

	c := s.Client
	if c == nil {
		c = http.DefaultClient
	}

	resp, err := c.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("status=%d", resp.StatusCode)
	}

	return io.ReadAll(io.LimitReader(resp.Body, maxSeedBytes))
}

// SeedFromLocation picks a source: empty means the bundled seed, an http(s)
// URL is fetched, anything else is read as a file path. A zero timeout leaves
// the HTTP fetch unbounded.
func SeedFromLocation(loc string, timeout time.Duration) SeedSource {
	loc = strings.TrimSpace(loc)
	switch {
	case loc == "":
		return EmbeddedSeed{}
	case strings.HasPrefix(loc, "http://"), strings.HasPrefix(loc, "https://"):
		return HTTPSeed{URL: loc, Client: &http.Client{Timeout: timeout}}
	default:
		return FileSeed{Path: loc}
	}
}
