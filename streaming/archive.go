package streaming

import (
	"bytes"
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/wowemulation-dev/cascette-go/blte"
	"github.com/wowemulation-dev/cascette-go/httprange"
	"github.com/wowemulation-dev/cascette-go/keys"
)

// ExtractRequest names one piece of archive content to pull out, by its
// encoding key.
type ExtractRequest struct {
	EncodingKey  keys.EncodingKey
	ExpectedSize uint32
	// IsBLTE controls whether the extracted bytes are BLTE-decompressed;
	// ExtractAllIndexed always sets this true, matching the assumption
	// that archive members are BLTE-wrapped unless told otherwise.
	IsBLTE bool
}

// ExtractResult is one piece of extracted archive content.
type ExtractResult struct {
	Content       []byte
	ArchiveOffset uint64
	WasCompressed bool
}

// Locator resolves an encoding key to its archive offset and size. The
// archiveindex types do not satisfy it directly, since their Lookup methods
// return archiveindex.Location; wrap one in a LocatorFunc.
type Locator interface {
	Lookup(ek keys.EncodingKey) (Location, bool)
}

// Location is the archive offset/size an encoding key resolves to. It
// mirrors archiveindex.Location's fields so this package doesn't need to
// import archiveindex directly; callers pass an adapter (see
// LocatorFunc) when wiring a real archiveindex.Resolver.
type Location struct {
	Offset uint64
	Size   uint64
}

// LocatorFunc adapts a plain function to Locator.
type LocatorFunc func(ek keys.EncodingKey) (Location, bool)

// Lookup implements Locator.
func (f LocatorFunc) Lookup(ek keys.EncodingKey) (Location, bool) { return f(ek) }

// ArchiveExtractor pulls one or more encoding keys' content out of a single
// remote archive, coalescing adjacent byte ranges and issuing bounded
// parallel HTTP range requests.
type ArchiveExtractor struct {
	client httprange.Client
	cfg    Config
}

// NewArchiveExtractor creates an ArchiveExtractor using client for range
// requests.
func NewArchiveExtractor(client httprange.Client, cfg Config) *ArchiveExtractor {
	return &ArchiveExtractor{client: client, cfg: cfg}
}

// ExtractRange fetches the raw bytes at [offset, offset+size) from
// archiveURL, BLTE-decompressing them (optionally with keys) if they carry
// the "BLTE" magic.
func (e *ArchiveExtractor) ExtractRange(ctx context.Context, archiveURL string, offset uint64, size uint32, ks blte.KeyStore) ([]byte, error) {
	r := httprange.ByteRange{Start: int64(offset), End: int64(offset) + int64(size) - 1}
	content, err := e.client.GetRange(ctx, archiveURL, &r)
	if err != nil {
		return nil, err
	}
	if looksLikeBLTE(content) {
		return decompressInMemory(content, ks)
	}
	return content, nil
}

// ExtractByKey resolves key through loc and extracts its content.
func (e *ArchiveExtractor) ExtractByKey(ctx context.Context, archiveURL string, key keys.EncodingKey, loc Locator, ks blte.KeyStore) (ExtractResult, error) {
	location, ok := loc.Lookup(key)
	if !ok {
		return ExtractResult{}, fmt.Errorf("%w: %s", ErrKeyNotFound, key)
	}
	content, err := e.ExtractRange(ctx, archiveURL, location.Offset, uint32(location.Size), ks)
	if err != nil {
		return ExtractResult{}, err
	}
	return ExtractResult{
		Content:       content,
		ArchiveOffset: location.Offset,
		WasCompressed: uint64(len(content)) != location.Size,
	}, nil
}

// ExtractMultiple resolves every request through loc, coalesces their
// archive ranges, and fetches them with up to cfg.MaxParallelRequests
// requests in flight. Requests whose key isn't found in loc are silently
// omitted from the result, matching a best-effort bulk extraction.
func (e *ArchiveExtractor) ExtractMultiple(ctx context.Context, archiveURL string, requests []ExtractRequest, loc Locator, ks blte.KeyStore) (map[keys.EncodingKey]ExtractResult, error) {
	type resolved struct {
		req ExtractRequest
		loc Location
	}

	var found []resolved
	var ranges []ByteRange
	for _, req := range requests {
		l, ok := loc.Lookup(req.EncodingKey)
		if !ok {
			continue
		}
		found = append(found, resolved{req: req, loc: l})
		ranges = append(ranges, ByteRange{Start: int64(l.Offset), End: int64(l.Offset) + int64(l.Size) - 1})
	}
	if len(found) == 0 {
		return map[keys.EncodingKey]ExtractResult{}, nil
	}

	supers := coalesceRanges(ranges, e.cfg.CoalesceThreshold)
	fetched := make([][]byte, len(supers))

	g, gctx := errgroup.WithContext(ctx)
	limit := e.cfg.MaxParallelRequests
	if limit <= 0 {
		limit = 1
	}
	g.SetLimit(limit)

	for i, sr := range supers {
		i, sr := i, sr
		g.Go(func() error {
			r := httprange.ByteRange{Start: sr.Start, End: sr.End}
			body, err := e.client.GetRange(gctx, archiveURL, &r)
			if err != nil {
				return err
			}
			fetched[i] = body
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	results := make(map[keys.EncodingKey]ExtractResult, len(found))
	for si, sr := range supers {
		body := fetched[si]
		for _, memberIdx := range sr.members {
			r := found[memberIdx]
			relStart := ranges[memberIdx].Start - sr.Start
			relEnd := relStart + (ranges[memberIdx].End - ranges[memberIdx].Start) + 1
			if relStart < 0 || relEnd > int64(len(body)) {
				return nil, fmt.Errorf("streaming: coalesced range slice out of bounds for key %s", r.req.EncodingKey)
			}
			piece := body[relStart:relEnd]

			content := piece
			wasCompressed := false
			if r.req.IsBLTE && looksLikeBLTE(piece) {
				decoded, err := decompressInMemory(piece, ks)
				if err != nil {
					return nil, fmt.Errorf("streaming: key %s: %w", r.req.EncodingKey, err)
				}
				content = decoded
				wasCompressed = true
			}

			results[r.req.EncodingKey] = ExtractResult{
				Content:       content,
				ArchiveOffset: r.loc.Offset,
				WasCompressed: wasCompressed,
			}
		}
	}
	return results, nil
}

// ExtractAllIndexed extracts every entry Locator knows about for the given
// keys, treating each as BLTE-wrapped.
func (e *ArchiveExtractor) ExtractAllIndexed(ctx context.Context, archiveURL string, allKeys []keys.EncodingKey, loc Locator, ks blte.KeyStore) (map[keys.EncodingKey]ExtractResult, error) {
	requests := make([]ExtractRequest, len(allKeys))
	for i, k := range allKeys {
		requests[i] = ExtractRequest{EncodingKey: k, IsBLTE: true}
	}
	return e.ExtractMultiple(ctx, archiveURL, requests, loc, ks)
}

// ArchiveSize returns archiveURL's total content length.
func (e *ArchiveExtractor) ArchiveSize(ctx context.Context, archiveURL string) (int64, error) {
	return e.client.GetContentLength(ctx, archiveURL)
}

// SupportsRangeRequests reports whether archiveURL's server advertises
// range support.
func (e *ArchiveExtractor) SupportsRangeRequests(ctx context.Context, archiveURL string) (bool, error) {
	return e.client.SupportsRanges(ctx, archiveURL)
}

func looksLikeBLTE(data []byte) bool {
	return len(data) >= 4 && bytes.Equal(data[:4], []byte("BLTE"))
}

func decompressInMemory(data []byte, ks blte.KeyStore) ([]byte, error) {
	file, _, err := blte.Parse(data)
	if err != nil {
		return nil, err
	}
	if ks != nil {
		return file.DecompressWithKeys(ks)
	}
	return file.Decompress()
}
