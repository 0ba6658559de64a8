package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/libraria/catalog-service/internal/domain"
)

// maxRequestBodySize caps non-upload request bodies.
const maxRequestBodySize = 1 << 20 // 1 MB

// decodeBody decodes a JSON request body into dest. An empty body leaves dest
// at its zero value. Returns false after writing the error response.
func decodeBody(w http.ResponseWriter, r *http.Request, dest interface{}) bool {
	defer r.Body.Close()

	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBodySize))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return false
	}
	if len(body) == 0 {
		return true
	}

	if err := json.Unmarshal(body, dest); err != nil {
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON request body at offset %d", syntaxErr.Offset))
			return false
		}
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid value for field %q", typeErr.Field))
			return false
		}
		writeError(w, http.StatusBadRequest, "invalid JSON request body")
		return false
	}
	return true
}

// parseID parses the {id} path parameter, writing a 400 response on failure.
func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		writeError(w, http.StatusBadRequest, "id must be a positive integer")
		return 0, false
	}
	return id, true
}

// writeCreated writes a 201 response with a Location header for the new
// resource.
func writeCreated(w http.ResponseWriter, resourcePath string, id int64, v interface{}) {
	w.Header().Set("Location", fmt.Sprintf("%s/%d", resourcePath, id))
	writeJSON(w, http.StatusCreated, v)
}

// uploadFileReader extracts the uploaded JSON file from a multipart request.
// Returns false after writing the error response.
func (s *Server) uploadFileReader(w http.ResponseWriter, r *http.Request) (io.ReadCloser, *multipart.FileHeader, bool) {
	if s.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "multipart field \"file\" is required")
		return nil, nil, false
	}

	contentType := header.Header.Get("Content-Type")
	if !isJSONContentType(contentType) {
		file.Close()
		writeDomainError(w, s.logger, domain.NewMalformedInputError(
			fmt.Sprintf("upload file must be JSON, got content type %q", contentType), nil))
		return nil, nil, false
	}

	return file, header, true
}

// isJSONContentType reports whether a part's Content-Type carries JSON,
// ignoring parameters such as charset and accepting +json suffixed types.
func isJSONContentType(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	switch mediaType {
	case "application/json", "text/json":
		return true
	}
	return strings.HasSuffix(mediaType, "+json")
}
