package history

import (
	"net/http"

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

func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/{book_id}", handler.listHistory)
	router.Delete("/{book_id}", handler.deleteHistory)
}

func (handler *Handler) listHistory(writer http.ResponseWriter, request *http.Request) {
	bookID, err := requestutil.ID(request, "book_id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	params := pagination.FromRequest(request)

	entries, err := handler.service.ListByBook(request.Context(), bookID, params.Limit, params.Offset)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.List(writer, entries, pagination.NewMeta(params, len(entries)))
}

func (handler *Handler) deleteHistory(writer http.ResponseWriter, request *http.Request) {
	bookID, err := requestutil.ID(request, "book_id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	deletedFor, err := handler.service.DeleteByBook(request.Context(), bookID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{"book_id": deletedFor})
}
