package importer

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/asmelnik/bookvault/internal/platform/apperr"
	"github.com/asmelnik/bookvault/internal/platform/constants"
	"github.com/asmelnik/bookvault/internal/platform/respond"
)

type Handler struct {
	reconciler *Reconciler
	feed       *FeedClient
	columns    []string
}

func NewHandler(reconciler *Reconciler, feed *FeedClient, columns []string) *Handler {
	return &Handler{
		reconciler: reconciler,
		feed:       feed,
		columns:    columns,
	}
}

// RegisterRoutes mounts the bulk import routes onto the catalog subrouter.
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Post("/file/upload-file", handler.uploadFile)
	router.Get("/loading/", handler.loadFromFeed)
}

func (handler *Handler) uploadFile(writer http.ResponseWriter, request *http.Request) {
	request.Body = http.MaxBytesReader(writer, request.Body, constants.MaxUploadBytes)
	if err := request.ParseMultipartForm(constants.MaxUploadBytes); err != nil {
		respond.Error(writer, request, apperr.ValidationError("Cannot parse the uploaded form: "+err.Error()))
		return
	}

	file, header, err := request.FormFile("file")
	if err != nil {
		respond.Error(writer, request, apperr.ValidationError("The request is missing the 'file' upload field"))
		return
	}
	defer file.Close()

	if !strings.EqualFold(filepath.Ext(header.Filename), ".xlsx") {
		respond.Error(writer, request, apperr.ValidationError("Only .xlsx spreadsheets are accepted"))
		return
	}

	candidates, err := ReadWorkbook(file, handler.columns)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.reconciler.Reconcile(request.Context(), candidates)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, result)
}

func (handler *Handler) loadFromFeed(writer http.ResponseWriter, request *http.Request) {
	candidates, err := handler.feed.Fetch(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.reconciler.Reconcile(request.Context(), candidates)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, result)
}
