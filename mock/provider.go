// Package mock provides test doubles for tagstream interfaces using function fields.
package mock

import (
	"context"

	"github.com/fwojciec/tagstream"
)

// Interface compliance checks.
var (
	_ tagstream.Provider = (*Provider)(nil)
	_ tagstream.Renderer = (*Renderer)(nil)
	_ tagstream.Store    = (*Store)(nil)
)

// Provider is a test double for tagstream.Provider.
// Set StreamFn before calling Stream.
type Provider struct {
	StreamFn func(ctx context.Context, req tagstream.Request) (tagstream.Source, error)
}

// Stream delegates to StreamFn.
func (p *Provider) Stream(ctx context.Context, req tagstream.Request) (tagstream.Source, error) {
	return p.StreamFn(ctx, req)
}

// Renderer is a test double for tagstream.Renderer that records every update.
// RenderFn, when set, is called after recording.
type Renderer struct {
	RenderFn func(tagstream.Update)
	Updates  []tagstream.Update
}

// Render records u and delegates to RenderFn.
func (r *Renderer) Render(u tagstream.Update) {
	r.Updates = append(r.Updates, u)
	if r.RenderFn != nil {
		r.RenderFn(u)
	}
}

// Store is a test double for tagstream.Store.
type Store struct {
	SaveFn func(ctx context.Context, c tagstream.Conversation) error
	LoadFn func(ctx context.Context, id string) (tagstream.Conversation, error)
	ListFn func(ctx context.Context) ([]tagstream.Summary, error)
}

// Save delegates to SaveFn.
func (s *Store) Save(ctx context.Context, c tagstream.Conversation) error {
	return s.SaveFn(ctx, c)
}

// Load delegates to LoadFn.
func (s *Store) Load(ctx context.Context, id string) (tagstream.Conversation, error) {
	return s.LoadFn(ctx, id)
}

// List delegates to ListFn.
func (s *Store) List(ctx context.Context) ([]tagstream.Summary, error) {
	return s.ListFn(ctx)
}
