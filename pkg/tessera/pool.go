package tessera

import (
	"context"
	"errors"
	"fmt"
	"image"

	"golang.org/x/sync/errgroup"
)

// Pool spreads recognition over several sessions, each with its own engine
// handle, built from the same languages and options.
type Pool struct {
	free     chan *Session
	sessions []*Session
}

// NewPool opens size sessions. It fails, closing what was opened, when any
// session fails to open.
func NewPool(size int, langs []Language, opts Options) (*Pool, error) {
	if size < 1 {
		return nil, fmt.Errorf("pool size must be at least 1, got %d", size)
	}
	p := &Pool{free: make(chan *Session, size)}
	for i := 0; i < size; i++ {
		s, err := New(langs, opts)
		if err != nil {
			p.Close()
			return nil, err
		}
		s.log = s.log.With().Int("worker", i).Logger()
		p.sessions = append(p.sessions, s)
		p.free <- s
	}
	return p, nil
}

// Size is the number of sessions in the pool.
func (p *Pool) Size() int { return len(p.sessions) }

func (p *Pool) acquire(ctx context.Context) (*Session, error) {
	select {
	case s := <-p.free:
		return s, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (p *Pool) release(s *Session) { p.free <- s }

// PerformOCR recognizes img on the next free session.
func (p *Pool) PerformOCR(ctx context.Context, img image.Image) (*Result, error) {
	s, err := p.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer p.release(s)
	return s.perform(ctx, img, s.Config(), false)
}

// PerformOCRBatch recognizes images in parallel. Results are in input order;
// the first failure cancels the images not yet started.
func (p *Pool) PerformOCRBatch(ctx context.Context, images []image.Image) ([]*Result, error) {
	results := make([]*Result, len(images))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.Size())
	for i, img := range images {
		g.Go(func() error {
			res, err := p.PerformOCR(ctx, img)
			if err != nil {
				return onPage(err, "recognize", i+1)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// CreatePDF recognizes the images in parallel and assembles them, in input
// order, into one searchable PDF.
func (p *Pool) CreatePDF(ctx context.Context, images []image.Image) ([]byte, error) {
	if len(images) == 0 {
		return nil, newError(ImageConversionError, "create pdf", fmt.Errorf("no images"))
	}
	pages := make([]recognizedPage, len(images))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.Size())
	for i, img := range images {
		g.Go(func() error {
			s, err := p.acquire(gctx)
			if err != nil {
				return err
			}
			defer p.release(s)
			page, err := s.recognizePage(gctx, img, i)
			if err != nil {
				return err
			}
			pages[i] = page
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	s := p.sessions[0]
	return assemblePDF(pages, s.pdf, s.langs)
}

// Close closes every session.
func (p *Pool) Close() error {
	var errs []error
	for _, s := range p.sessions {
		errs = append(errs, s.Close())
	}
	return errors.Join(errs...)
}
