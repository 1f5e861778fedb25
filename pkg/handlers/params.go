package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TenantMiddleware binds a request to its organization's database scope.
type TenantMiddleware func(http.HandlerFunc) http.HandlerFunc

// ParseTranscriptID extracts and validates the transcript ID from the
// request path. Expects path parameter: tid
func ParseTranscriptID(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (uuid.UUID, bool) {
	return parseUUID(w, r, "tid", "invalid_transcript_id", "Invalid transcript ID format", logger)
}

// ParseTemplateID extracts and validates the prompt template ID from the
// request path. Expects path parameter: tmpl_id
func ParseTemplateID(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (uuid.UUID, bool) {
	return parseUUID(w, r, "tmpl_id", "invalid_template_id", "Invalid template ID format", logger)
}

// ParseDatasetID extracts and validates the dataset ID from the request
// path. Expects path parameter: did
func ParseDatasetID(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (uuid.UUID, bool) {
	return parseUUID(w, r, "did", "invalid_dataset_id", "Invalid dataset ID format", logger)
}

// ParseRunID extracts and validates the evaluation run ID from the request
// path. Expects path parameter: run_id
func ParseRunID(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (uuid.UUID, bool) {
	return parseUUID(w, r, "run_id", "invalid_run_id", "Invalid run ID format", logger)
}

// ParseRepresentativeID extracts and validates the representative ID from
// the request path. Expects path parameter: rid
func ParseRepresentativeID(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (uuid.UUID, bool) {
	return parseUUID(w, r, "rid", "invalid_representative_id", "Invalid representative ID format", logger)
}

// ParseCredentialID extracts and validates the credential ID from the
// request path. Expects path parameter: cid
func ParseCredentialID(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (uuid.UUID, bool) {
	return parseUUID(w, r, "cid", "invalid_credential_id", "Invalid credential ID format", logger)
}

// parseUUID is the internal helper that does the actual parsing work.
func parseUUID(w http.ResponseWriter, r *http.Request, pathParam, errorCode, errorMessage string, logger *zap.Logger) (uuid.UUID, bool) {
	idStr := r.PathValue(pathParam)
	id, err := uuid.Parse(idStr)
	if err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, errorCode, errorMessage); err != nil {
			logger.Error("Failed to write error response", zap.Error(err))
		}
		return uuid.Nil, false
	}
	return id, true
}
