// Package ranking scores a corpus against a query fingerprint and orders the
// results by descending composite score.
package ranking

import (
	"fmt"
	"sort"

	"imagesearch/similarity"
	"imagesearch/types"
	"imagesearch/workerpool"
)

// DefaultTopK is the number of results shown for a query.
const DefaultTopK = 5

// Options controls how the corpus is scored.
type Options struct {
	// Parallel scores contiguous slices of the corpus on Pool.
	Parallel bool
	Pool     *workerpool.Pool
}

// Rank scores every corpus entry against query and returns the results sorted
// by descending composite score. Entries with equal scores keep their corpus
// order. The first comparison error aborts the ranking.
func Rank(query types.Fingerprint, corpus []types.Fingerprint, opts Options) ([]types.SimilarityResult, error) {
	var (
		results []types.SimilarityResult
		err     error
	)
	if opts.Parallel && len(corpus) > 1 {
		results, err = scoreParallel(query, corpus, opts.Pool)
	} else {
		results, err = score(query, corpus)
	}
	if err != nil {
		return nil, err
	}

	Sort(results)
	return results, nil
}

// Sort orders results by descending composite score, keeping the relative
// order of equal scores.
func Sort(results []types.SimilarityResult) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].CompositeScore > results[j].CompositeScore
	})
}

// TopK returns the first k results. Asking for more results than available
// returns all of them.
func TopK(results []types.SimilarityResult, k int) ([]types.SimilarityResult, error) {
	if k < 0 {
		return nil, fmt.Errorf("%w: %d", types.ErrInvalidK, k)
	}
	return results[:min(k, len(results))], nil
}

func score(query types.Fingerprint, corpus []types.Fingerprint) ([]types.SimilarityResult, error) {
	results := make([]types.SimilarityResult, 0, len(corpus))
	for _, entry := range corpus {
		result, err := similarity.Compare(query, entry)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	return results, nil
}

func scoreParallel(query types.Fingerprint, corpus []types.Fingerprint, pool *workerpool.Pool) ([]types.SimilarityResult, error) {
	partitions := min(pool.Limit(), len(corpus))
	size := (len(corpus) + partitions - 1) / partitions

	parts, err := workerpool.Run(pool, partitions, func(i int) ([]types.SimilarityResult, error) {
		lo := min(i*size, len(corpus))
		hi := min(lo+size, len(corpus))
		return score(query, corpus[lo:hi])
	})
	if err != nil {
		return nil, err
	}

	results := make([]types.SimilarityResult, 0, len(corpus))
	for _, part := range parts {
		results = append(results, part...)
	}
	return results, nil
}
