package imageprocessor

import (
	"context"
	"fmt"
	"time"

	"imagesearch/database"
	"imagesearch/logging"
	"imagesearch/metrics"
	"imagesearch/ranking"
	"imagesearch/types"
	"imagesearch/workerpool"
)

// SearchOptions contains options for a similarity search
type SearchOptions struct {
	QueryPath string

	// TopK limits the result count; 0 returns every corpus entry
	TopK int

	// Parallel scores the corpus on Pool
	Parallel bool
	Pool     *workerpool.Pool

	// SkipMismatchedChannels drops corpus entries whose channel count differs
	// from the query instead of failing the search
	SkipMismatchedChannels bool

	DebugMode bool
}

// FindSimilarImages fingerprints the query image, reads the whole corpus and
// returns its entries ranked by descending composite score.
func FindSimilarImages(ctx context.Context, store database.CorpusStore, fingerprinter *Fingerprinter, options SearchOptions) (results []types.SimilarityResult, err error) {
	if options.TopK < 0 {
		return nil, fmt.Errorf("%w: %d", types.ErrInvalidK, options.TopK)
	}

	start := time.Now()
	corpusSize := 0
	defer func() { metrics.ObserveQuery(start, corpusSize, err) }()

	if options.DebugMode {
		logging.DebugLog("Starting image search for: %s", options.QueryPath)
	}

	query, err := fingerprinter.FingerprintFile(options.QueryPath)
	if err != nil {
		return nil, fmt.Errorf("failed to fingerprint query image: %w", err)
	}

	corpus, err := store.ReadAll(ctx)
	if err != nil {
		return nil, err
	}
	corpusSize = len(corpus)

	if options.SkipMismatchedChannels {
		corpus = filterByChannelCount(corpus, query.ChannelCount())
		if skipped := corpusSize - len(corpus); skipped > 0 {
			logging.LogInfo("Skipped %d fingerprints with a channel count other than %d", skipped, query.ChannelCount())
		}
	}

	if options.DebugMode {
		logging.DebugLog("Query brightness %.4f, %d channels, comparing against %d fingerprints",
			query.AverageBrightness, query.ChannelCount(), corpusSize)
	}

	results, err = ranking.Rank(query, corpus, ranking.Options{Parallel: options.Parallel, Pool: options.Pool})
	if err != nil {
		return nil, err
	}

	if options.TopK > 0 {
		results, err = ranking.TopK(results, options.TopK)
		if err != nil {
			return nil, err
		}
	}

	if options.DebugMode {
		logging.DebugLog("Search completed in %v with %d results", time.Since(start), len(results))
	}
	return results, nil
}

func filterByChannelCount(corpus []types.Fingerprint, channels int) []types.Fingerprint {
	kept := make([]types.Fingerprint, 0, len(corpus))
	for _, fp := range corpus {
		if fp.ChannelCount() == channels {
			kept = append(kept, fp)
		}
	}
	return kept
}
