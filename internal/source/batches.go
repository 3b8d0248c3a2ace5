package source

import (
	"iter"

	"github.com/matheuskafuri/techradar/internal/news"
)

// Batches is a pull iterator over the batches of one fetch. It is not
// safe for concurrent use and cannot be restarted.
//
//	b := src.Fetch(ctx, req)
//	defer b.Close()
//	for b.Next() {
//		use(b.Batch())
//	}
//	if err := b.Err(); err != nil { ... }
type Batches struct {
	next  func() ([]news.Article, error, bool)
	stop  func()
	batch []news.Article
	err   error
	done  bool
}

// FromSeq adapts seq to a Batches. A non-nil error from seq ends the
// iteration and is reported by Err.
func FromSeq(seq iter.Seq2[[]news.Article, error]) *Batches {
	next, stop := iter.Pull2(seq)
	return &Batches{next: next, stop: stop}
}

// Next advances to the next batch. It returns false when the sequence
// is exhausted, has failed, or was closed.
func (b *Batches) Next() bool {
	if b.done {
		return false
	}
	batch, err, ok := b.next()
	switch {
	case !ok:
		b.finish()
		return false
	case err != nil:
		b.err = err
		b.finish()
		return false
	}
	b.batch = batch
	return true
}

// Batch returns the batch produced by the last successful Next.
func (b *Batches) Batch() []news.Article {
	return b.batch
}

// Err returns the error that ended the iteration, if any.
func (b *Batches) Err() error {
	return b.err
}

// Close releases the producer. Calling it more than once is fine.
func (b *Batches) Close() {
	if !b.done {
		b.finish()
	}
}

func (b *Batches) finish() {
	b.done = true
	b.batch = nil
	b.stop()
}
