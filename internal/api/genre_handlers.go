package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/openshelf/openshelf-server/internal/domain"
	"github.com/openshelf/openshelf-server/internal/service"
)

func (s *Server) registerGenreRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listGenres",
		Method:      http.MethodGet,
		Path:        "/api/v1/genres",
		Summary:     "List genres",
		Description: "Returns all genres sorted by name",
		Tags:        []string{"Genres"},
	}, s.handleListGenres)

	huma.Register(s.api, huma.Operation{
		OperationID: "createGenre",
		Method:      http.MethodPost,
		Path:        "/api/v1/genres",
		Summary:     "Create genre",
		Description: "Creates a genre with a unique name. If the name is already taken the existing genre is returned with created=false.",
		Tags:        []string{"Genres"},
	}, s.handleCreateGenre)

	huma.Register(s.api, huma.Operation{
		OperationID: "getGenre",
		Method:      http.MethodGet,
		Path:        "/api/v1/genres/{id}",
		Summary:     "Get genre",
		Description: "Returns a genre and the books that reference it",
		Tags:        []string{"Genres"},
	}, s.handleGetGenre)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateGenre",
		Method:      http.MethodPatch,
		Path:        "/api/v1/genres/{id}",
		Summary:     "Rename genre",
		Description: "Renames a genre. The genre keeps its ID and URL.",
		Tags:        []string{"Genres"},
	}, s.handleUpdateGenre)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteGenre",
		Method:      http.MethodDelete,
		Path:        "/api/v1/genres/{id}",
		Summary:     "Delete genre",
		Description: "Deletes a genre. Blocked with 409 while books still reference it; the response details name the referencing books.",
		Tags:        []string{"Genres"},
	}, s.handleDeleteGenre)

	huma.Register(s.api, huma.Operation{
		OperationID: "getGenreBooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/genres/{id}/books",
		Summary:     "Get genre books",
		Description: "Returns the books referencing a genre",
		Tags:        []string{"Genres"},
	}, s.handleGetGenreBooks)
}

// === DTOs ===

type GenreResponse struct {
	ID        string    `json:"id" doc:"Genre ID"`
	Name      string    `json:"name" doc:"Genre name"`
	URL       string    `json:"url" doc:"Canonical catalog URL"`
	CreatedAt time.Time `json:"created_at" doc:"Creation time"`
	UpdatedAt time.Time `json:"updated_at" doc:"Last update time"`
}

type BookResponse struct {
	ID      string `json:"id" doc:"Book ID"`
	Title   string `json:"title" doc:"Book title"`
	Author  string `json:"author,omitempty" doc:"Book author"`
	Summary string `json:"summary,omitempty" doc:"Book summary"`
	URL     string `json:"url" doc:"Canonical catalog URL"`
}

type ListGenresResponse struct {
	Genres []GenreResponse `json:"genres" doc:"List of genres"`
}

type ListGenresOutput struct {
	Body ListGenresResponse
}

type CreateGenreInput struct {
	Body struct {
		Name string `json:"name" doc:"Genre name"`
	}
}

type CreateGenreResponse struct {
	Genre   GenreResponse `json:"genre" doc:"Created or existing genre"`
	Created bool          `json:"created" doc:"False when the name already belonged to an existing genre"`
	URL     string        `json:"url" doc:"Redirect target for the genre"`
}

type CreateGenreOutput struct {
	Body CreateGenreResponse
}

type GetGenreInput struct {
	ID string `path:"id" doc:"Genre ID"`
}

type GenreDetailResponse struct {
	Genre GenreResponse  `json:"genre" doc:"The genre"`
	Books []BookResponse `json:"books" doc:"Books referencing the genre"`
}

type GenreDetailOutput struct {
	Body GenreDetailResponse
}

type UpdateGenreInput struct {
	ID   string `path:"id" doc:"Genre ID"`
	Body struct {
		Name string `json:"name" doc:"New genre name"`
	}
}

type GenreOutput struct {
	Body GenreResponse
}

type DeleteGenreInput struct {
	ID string `path:"id" doc:"Genre ID"`
}

type MessageResponse struct {
	Message string `json:"message" doc:"Result message"`
}

type MessageOutput struct {
	Body MessageResponse
}

type GenreBooksResponse struct {
	Books []BookResponse `json:"books" doc:"Books referencing the genre"`
}

type GenreBooksOutput struct {
	Body GenreBooksResponse
}

// === Handlers ===

func (s *Server) handleListGenres(ctx context.Context, _ *struct{}) (*ListGenresOutput, error) {
	genres, err := s.services.Genre.ListGenres(ctx)
	if err != nil {
		return nil, err
	}

	resp := make([]GenreResponse, len(genres))
	for i, g := range genres {
		resp[i] = mapGenreResponse(g)
	}

	return &ListGenresOutput{Body: ListGenresResponse{Genres: resp}}, nil
}

func (s *Server) handleCreateGenre(ctx context.Context, input *CreateGenreInput) (*CreateGenreOutput, error) {
	result, err := s.services.Genre.CreateGenre(ctx, service.GenreRequest{Name: input.Body.Name})
	if err != nil {
		return nil, err
	}

	return &CreateGenreOutput{Body: CreateGenreResponse{
		Genre:   mapGenreResponse(result.Genre),
		Created: result.Created,
		URL:     result.Genre.URL(),
	}}, nil
}

func (s *Server) handleGetGenre(ctx context.Context, input *GetGenreInput) (*GenreDetailOutput, error) {
	detail, err := s.services.Genre.GetGenre(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	return &GenreDetailOutput{Body: GenreDetailResponse{
		Genre: mapGenreResponse(detail.Genre),
		Books: mapBookResponses(detail.Books),
	}}, nil
}

func (s *Server) handleUpdateGenre(ctx context.Context, input *UpdateGenreInput) (*GenreOutput, error) {
	g, err := s.services.Genre.UpdateGenre(ctx, input.ID, service.GenreRequest{Name: input.Body.Name})
	if err != nil {
		return nil, err
	}

	return &GenreOutput{Body: mapGenreResponse(g)}, nil
}

func (s *Server) handleDeleteGenre(ctx context.Context, input *DeleteGenreInput) (*MessageOutput, error) {
	if err := s.services.Genre.DeleteGenre(ctx, input.ID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Genre deleted"}}, nil
}

func (s *Server) handleGetGenreBooks(ctx context.Context, input *GetGenreInput) (*GenreBooksOutput, error) {
	books, err := s.services.Genre.ListGenreBooks(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	return &GenreBooksOutput{Body: GenreBooksResponse{Books: mapBookResponses(books)}}, nil
}

// === Mappers ===

func mapGenreResponse(g *domain.Genre) GenreResponse {
	return GenreResponse{
		ID:        g.ID,
		Name:      g.Name,
		URL:       g.URL(),
		CreatedAt: g.CreatedAt,
		UpdatedAt: g.UpdatedAt,
	}
}

func mapBookResponses(books []*domain.Book) []BookResponse {
	resp := make([]BookResponse, len(books))
	for i, b := range books {
		resp[i] = BookResponse{
			ID:      b.ID,
			Title:   b.Title,
			Author:  b.Author,
			Summary: b.Summary,
			URL:     b.URL(),
		}
	}
	return resp
}
