package service

import (
	"context"

	"connectrpc.com/connect"

	"github.com/mmynk/slidemaker/internal/search"
	"github.com/mmynk/slidemaker/pkg/api"
)

// SearchService implements the Connect SearchService.
type SearchService struct {
	searcher *search.Searcher
}

// NewSearchService creates a new SearchService.
func NewSearchService(searcher *search.Searcher) *SearchService {
	return &SearchService{searcher: searcher}
}

// Search matches the query against the caller's decks and groups and all templates.
func (s *SearchService) Search(ctx context.Context, req *connect.Request[api.SearchRequest]) (*connect.Response[api.SearchResponse], error) {
	results, err := s.searcher.Search(ctx, ownerOf(ctx), req.Msg.Query)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.SearchResponse{Results: results}), nil
}
