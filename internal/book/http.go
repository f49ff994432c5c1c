package book

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/asmelnik/bookvault/internal/platform/request"
	"github.com/asmelnik/bookvault/internal/platform/respond"
	"github.com/asmelnik/bookvault/pkg/pagination"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the catalog routes onto the given router. The bulk
// import routes under the same prefix are registered by the importer handler.
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Post("/create", handler.createBook)
	router.Get("/", handler.listBooks)
	router.Get("/{id}", handler.getBook)
	router.Patch("/{id}", handler.updateBook)
	router.Delete("/{id}", handler.archiveBook)
}

func (handler *Handler) createBook(writer http.ResponseWriter, request *http.Request) {
	var input Input
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	created, err := handler.service.Create(request.Context(), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, created)
}

func (handler *Handler) getBook(writer http.ResponseWriter, request *http.Request) {
	bookID, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	b, err := handler.service.Get(request.Context(), bookID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, b)
}

func (handler *Handler) updateBook(writer http.ResponseWriter, request *http.Request) {
	bookID, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var patch Patch
	if err := requestutil.DecodeJSON(request, &patch); err != nil {
		respond.Error(writer, request, err)
		return
	}

	updated, err := handler.service.Update(request.Context(), bookID, patch)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, updated)
}

func (handler *Handler) archiveBook(writer http.ResponseWriter, request *http.Request) {
	bookID, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	archivedID, err := handler.service.Archive(request.Context(), bookID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, map[string]string{"id": archivedID})
}

func (handler *Handler) listBooks(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)
	query := request.URL.Query()

	price, err := requestutil.QueryInt(request, "price")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	filter := Filter{
		Title:       query.Get("title"),
		Author:      query.Get("author"),
		Price:       price,
		Description: query.Get("description"),
		Genres:      splitTags(query.Get("genres")),
		GenresNot:   splitTags(query.Get("genres_neq")),
	}

	books, err := handler.service.List(request.Context(), filter, params.Limit, params.Offset)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.List(writer, books, pagination.NewMeta(params, len(books)))
}

// splitTags turns a comma-separated query value into a tag list.
func splitTags(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			tags = append(tags, trimmed)
		}
	}
	return tags
}
