package streaming

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/wowemulation-dev/cascette-go/blte"
	"github.com/wowemulation-dev/cascette-go/httprange"
	"github.com/wowemulation-dev/cascette-go/keys"
)

// ArchiveJob is one archive's worth of extraction work for a
// BatchExtractor: the archive's URL, the requests to resolve against it,
// and the Locator that resolves them.
type ArchiveJob struct {
	ArchiveURL string
	Requests   []ExtractRequest
	Locator    Locator
}

// BatchExtractor runs ArchiveExtractor.ExtractMultiple over several
// archives concurrently, one client per archive, merging all results into
// a single map.
type BatchExtractor struct {
	clients []httprange.Client
	cfg     Config
}

// NewBatchExtractor creates a BatchExtractor with one client per archive it
// can process concurrently; ExtractFromArchives rejects job lists longer
// than len(clients).
func NewBatchExtractor(clients []httprange.Client, cfg Config) *BatchExtractor {
	return &BatchExtractor{clients: clients, cfg: cfg}
}

// ReaderCount returns how many archives this extractor can process at once.
func (b *BatchExtractor) ReaderCount() int { return len(b.clients) }

// ExtractFromArchives runs each job against its own client concurrently and
// merges every archive's results into one map.
func (b *BatchExtractor) ExtractFromArchives(ctx context.Context, jobs []ArchiveJob, ks blte.KeyStore) (map[keys.EncodingKey]ExtractResult, error) {
	if len(jobs) > len(b.clients) {
		return nil, ErrTooManyArchives
	}

	perJob := make([]map[keys.EncodingKey]ExtractResult, len(jobs))
	g, gctx := errgroup.WithContext(ctx)

	for i, job := range jobs {
		i, job := i, job
		client := b.clients[i]
		g.Go(func() error {
			extractor := NewArchiveExtractor(client, b.cfg)
			results, err := extractor.ExtractMultiple(gctx, job.ArchiveURL, job.Requests, job.Locator, ks)
			if err != nil {
				return err
			}
			perJob[i] = results
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	combined := make(map[keys.EncodingKey]ExtractResult)
	for _, results := range perJob {
		for k, v := range results {
			combined[k] = v
		}
	}
	return combined, nil
}
