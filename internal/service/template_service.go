package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/slidemaker/internal/models"
	"github.com/mmynk/slidemaker/internal/session"
	"github.com/mmynk/slidemaker/internal/templates"
	"github.com/mmynk/slidemaker/pkg/api"
)

// TemplateService implements the Connect TemplateService. Browsing and using
// templates works for guests too.
type TemplateService struct {
	catalog *templates.Catalog
	handoff *session.Handoff
}

// NewTemplateService creates a new TemplateService.
func NewTemplateService(catalog *templates.Catalog, handoff *session.Handoff) *TemplateService {
	return &TemplateService{catalog: catalog, handoff: handoff}
}

// ListTemplates lists all templates or those of one category.
func (s *TemplateService) ListTemplates(ctx context.Context, req *connect.Request[api.ListTemplatesRequest]) (*connect.Response[api.ListTemplatesResponse], error) {
	list, err := s.catalog.List(ctx, req.Msg.Category)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.ListTemplatesResponse{Templates: list}), nil
}

// CreateTemplate adds a template to the catalog.
func (s *TemplateService) CreateTemplate(ctx context.Context, req *connect.Request[api.CreateTemplateRequest]) (*connect.Response[api.TemplateResponse], error) {
	if _, err := callerID(ctx); err != nil {
		return nil, err
	}
	tmpl, err := s.catalog.Create(ctx, models.TemplateFields{
		Name:         req.Msg.Name,
		PreviewImage: req.Msg.PreviewImage,
		Category:     req.Msg.Category,
	})
	if err != nil {
		return nil, toConnectError(err)
	}
	slog.Info("Template created", "template_id", tmpl.ID, "category", tmpl.Category)
	return connect.NewResponse(&api.TemplateResponse{Template: tmpl}), nil
}

// UpdateTemplate changes the fields that are set.
func (s *TemplateService) UpdateTemplate(ctx context.Context, req *connect.Request[api.UpdateTemplateRequest]) (*connect.Response[api.TemplateResponse], error) {
	if _, err := callerID(ctx); err != nil {
		return nil, err
	}
	tmpl, err := s.catalog.Update(ctx, req.Msg.TemplateID, models.TemplatePatch{
		Name:         req.Msg.Name,
		PreviewImage: req.Msg.PreviewImage,
		Category:     req.Msg.Category,
	})
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.TemplateResponse{Template: tmpl}), nil
}

// UseTemplate selects a template for the next deck.
func (s *TemplateService) UseTemplate(ctx context.Context, req *connect.Request[api.TemplateRequest]) (*connect.Response[api.TemplateResponse], error) {
	owner := ownerOf(ctx)
	tmpl, err := s.catalog.Use(ctx, owner, req.Msg.TemplateID, s.handoff.For(owner))
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.TemplateResponse{Template: tmpl}), nil
}

// RecentTemplates returns the caller's recently used templates.
func (s *TemplateService) RecentTemplates(ctx context.Context, req *connect.Request[api.RecentTemplatesRequest]) (*connect.Response[api.ListTemplatesResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	list, err := s.catalog.Recent(ctx, userID, req.Msg.Limit)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.ListTemplatesResponse{Templates: list}), nil
}
