package analyzer

import (
	"runtime"
	"sync"

	"github.com/sudachigo/sudachigo/dic"
	"github.com/sudachigo/sudachigo/lattice"
	"github.com/sudachigo/sudachigo/morpheme"
	"github.com/sudachigo/sudachigo/oov"
	"github.com/sudachigo/sudachigo/pathrewrite"
	"github.com/sudachigo/sudachigo/rewrite"
)

// Factory builds per-thread JapaneseAnalyzers from one shared, immutable
// DictionarySet and plugin configuration. Unlike JapaneseAnalyzer itself,
// Factory holds no mutable state and is safe for concurrent use by any
// number of goroutines.
type Factory struct {
	dict         *dic.DictionarySet
	mode         lattice.Mode
	newPipeline  func() *rewrite.Pipeline
	newProviders func() []oov.Provider
	newPathRW    func() (*pathrewrite.Pipeline, *pathrewrite.InhibitConnection)
	projection   morpheme.Projection
}

// NewFactory builds a Factory. The factory takes constructor funcs rather
// than prebuilt plugin instances, guaranteeing each JapaneseAnalyzer gets
// its own copy even for plugins with internal per-call scratch state
// (e.g. an OOV provider's synthetic-index counter).
func NewFactory(
	dict *dic.DictionarySet,
	mode lattice.Mode,
	newPipeline func() *rewrite.Pipeline,
	newProviders func() []oov.Provider,
	newPathRW func() (*pathrewrite.Pipeline, *pathrewrite.InhibitConnection),
	projection morpheme.Projection,
) *Factory {
	return &Factory{
		dict: dict, mode: mode,
		newPipeline: newPipeline, newProviders: newProviders, newPathRW: newPathRW,
		projection: projection,
	}
}

// NewAnalyzer builds one fresh JapaneseAnalyzer bound to this factory's
// shared dictionary, for the calling goroutine's exclusive use.
func (f *Factory) NewAnalyzer() *JapaneseAnalyzer {
	pathRW, inhibit := f.newPathRW()
	return New(f.dict, f.mode, f.newPipeline(), f.newProviders(), pathRW, inhibit, f.projection)
}

// WorkerPool runs fn once per input using a bounded pool of goroutines,
// each with its own JapaneseAnalyzer obtained from f: a dispatcher slices
// the input into fixed-size chunks and feeds a channel, a fixed worker
// pool drains it, and a collector goroutine closes the result channel once
// every worker has returned.
func (f *Factory) WorkerPool(inputs []string, fn func(a *JapaneseAnalyzer, input string) ([]*morpheme.MorphemeList, error)) ([]*morpheme.MorphemeList, error) {
	const chunkSize = 256
	numWorkers := runtime.NumCPU()
	if numWorkers > len(inputs) && len(inputs) > 0 {
		numWorkers = len(inputs)
	}
	if numWorkers < 1 {
		numWorkers = 1
	}

	type chunk struct {
		lists []*morpheme.MorphemeList
		err   error
	}

	chunksCh := make(chan []string, numWorkers)
	resultCh := make(chan chunk, numWorkers)

	var wg sync.WaitGroup
	wg.Add(numWorkers)
	for i := 0; i < numWorkers; i++ {
		go func() {
			defer wg.Done()
			a := f.NewAnalyzer()
			var failed bool
			for texts := range chunksCh {
				// Keep draining after a failure so the dispatcher never
				// blocks on a channel nobody reads.
				if failed {
					continue
				}
				out := make([]*morpheme.MorphemeList, 0, len(texts))
				for _, text := range texts {
					lists, err := fn(a, text)
					if err != nil {
						resultCh <- chunk{err: err}
						failed = true
						break
					}
					out = append(out, lists...)
				}
				if !failed {
					resultCh <- chunk{lists: out}
				}
			}
		}()
	}

	go func() {
		for i := 0; i < len(inputs); i += chunkSize {
			end := i + chunkSize
			if end > len(inputs) {
				end = len(inputs)
			}
			chunksCh <- inputs[i:end]
		}
		close(chunksCh)
	}()

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	var all []*morpheme.MorphemeList
	var firstErr error
	for c := range resultCh {
		if c.err != nil {
			if firstErr == nil {
				firstErr = c.err
			}
			continue
		}
		all = append(all, c.lists...)
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return all, nil
}

// TokenizeList tokenizes every input in texts concurrently, returning one
// MorphemeList per input in arbitrary completion order.
func (f *Factory) TokenizeList(texts []string) ([]*morpheme.MorphemeList, error) {
	return f.WorkerPool(texts, func(a *JapaneseAnalyzer, input string) ([]*morpheme.MorphemeList, error) {
		list, err := a.Tokenize(input)
		if err != nil {
			return nil, err
		}
		return []*morpheme.MorphemeList{list}, nil
	})
}

// SentencesList runs TokenizeSentences over every input in texts
// concurrently, flattening each input's per-sentence results into the
// combined output slice.
func (f *Factory) SentencesList(texts []string) ([]*morpheme.MorphemeList, error) {
	return f.WorkerPool(texts, func(a *JapaneseAnalyzer, input string) ([]*morpheme.MorphemeList, error) {
		return a.TokenizeSentences(input)
	})
}
