// Package export gates plan downloads behind the per-day export quota: the
// quota is checked before the document is rendered and counted only after
// rendering succeeded, so a failed export never costs the caller anything.
package export

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/jefree-app/backend/internal/quota"
)

var ErrNothingToExport = errors.New("nothing to export")

// Document aggregates the plan sections a caller wants to download.
type Document struct {
	UserName     string    `json:"userName,omitempty"`
	GeneratedAt  time.Time `json:"generatedAt"`
	MenuPlan     string    `json:"menuPlan,omitempty"`
	ShoppingList string    `json:"shoppingList,omitempty"`
	CostEstimate string    `json:"costEstimate,omitempty"`
}

// Empty reports whether the document has no content sections.
func (d Document) Empty() bool {
	return d.MenuPlan == "" && d.ShoppingList == "" && d.CostEstimate == ""
}

// Renderer turns a document into a downloadable payload. PDF layout lives on
// the client; the server default is plain text.
type Renderer interface {
	Render(doc Document) (payload []byte, contentType string, err error)
}

// Service checks and records export quota around the render.
type Service struct {
	quotas   quota.Store
	renderer Renderer
}

// NewService wires the export service. A nil renderer falls back to the
// plain-text default.
func NewService(quotas quota.Store, renderer Renderer) *Service {
	if renderer == nil {
		renderer = TextRenderer{}
	}
	return &Service{quotas: quotas, renderer: renderer}
}

// Export renders the document if the caller still has download quota today.
func (s *Service) Export(ctx context.Context, callerID string, premium bool, doc Document) ([]byte, string, error) {
	if doc.Empty() {
		return nil, "", ErrNothingToExport
	}

	ok, err := s.quotas.CanExport(ctx, callerID, premium)
	if err != nil {
		return nil, "", fmt.Errorf("check export quota: %w", err)
	}
	if !ok {
		return nil, "", quota.ErrExportQuotaExceeded
	}

	if doc.GeneratedAt.IsZero() {
		doc.GeneratedAt = time.Now().UTC()
	}

	payload, contentType, err := s.renderer.Render(doc)
	if err != nil {
		return nil, "", fmt.Errorf("render export: %w", err)
	}

	// Tracked for premium callers too, for analytics; it never blocks them.
	if err := s.quotas.RecordExport(ctx, callerID); err != nil {
		log.Printf("[export] failed to record export for caller=%s: %v", callerID, err)
	}

	return payload, contentType, nil
}
