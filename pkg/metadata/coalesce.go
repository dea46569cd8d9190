package metadata

import (
	"context"

	"golang.org/x/sync/singleflight"

	"github.com/wadjakorntonsri/rendium/pkg/core/domain"
	"github.com/wadjakorntonsri/rendium/pkg/logger"
	"github.com/wadjakorntonsri/rendium/pkg/ports"
)

// Coalesced shares one in-flight fetch between concurrent callers asking
// for the same URL. Results are not kept once the fetch returns.
type Coalesced struct {
	next  ports.MetadataFetcher
	group singleflight.Group
}

func NewCoalesced(next ports.MetadataFetcher) *Coalesced {
	return &Coalesced{next: next}
}

func (c *Coalesced) Fetch(ctx context.Context, rawURL string) (domain.Metadata, error) {
	// The shared call must outlive any single caller's cancellation.
	v, err, _ := c.group.Do(rawURL, func() (interface{}, error) {
		return c.next.Fetch(context.WithoutCancel(ctx), rawURL)
	})
	if err != nil {
		return domain.Metadata{}, err
	}
	return v.(domain.Metadata), nil
}

// Soft turns any fetcher chain into the soft extraction used by request
// handlers: failures other than *ParseError become the host-name fallback.
type Soft struct {
	next ports.MetadataFetcher
	log  logger.Logger
}

func NewSoft(next ports.MetadataFetcher, log logger.Logger) *Soft {
	return &Soft{next: next, log: log}
}

func (s *Soft) Extract(ctx context.Context, rawURL string) (domain.Metadata, error) {
	return Extract(ctx, s.next, rawURL, s.log)
}

var (
	_ ports.MetadataFetcher   = (*Coalesced)(nil)
	_ ports.MetadataExtractor = (*Soft)(nil)
	_ ports.MetadataExtractor = (*Extractor)(nil)
	_ ports.MetadataFetcher   = (*Extractor)(nil)
)
