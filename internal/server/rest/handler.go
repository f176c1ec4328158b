package rest

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/tnyr/internal/server/services"
)

const maxBodyBytes = 64 << 10

// Field names of the client-side protocol, spelling included.
const (
	fieldLookupHash   = "LOOKUP_HASH"
	fieldSalt         = "ENCRYTION_SALT"
	fieldIV           = "IV"
	fieldEncryptedURL = "ENCRYPTED_URL"
)

type shortenServerRequest struct {
	URL *string `json:"url"`
}

type shortenServerResponse struct {
	ID string `json:"id"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type encryptedURLResponse struct {
	Salt         string `json:"ENCRYTION_SALT"`
	IV           string `json:"IV"`
	EncryptedURL string `json:"ENCRYPTED_URL"`
}

type deleteRequest struct {
	ID            string `json:"id"`
	DeletionToken string `json:"deletion_token"`
}

type healthResponse struct {
	Status string `json:"status"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
}

func (s *Server) handleShortenServer(w http.ResponseWriter, r *http.Request) {
	var req shortenServerRequest
	if err := decodeJSON(w, r, &req); err != nil || req.URL == nil || *req.URL == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Missing URL"})
		return
	}

	id, err := s.links.Shorten(r.Context(), *req.URL)
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusCreated, shortenServerResponse{ID: id})
}

func (s *Server) handleShortenClient(w http.ResponseWriter, r *http.Request) {
	var req map[string]any
	if err := decodeJSON(w, r, &req); err != nil {
		req = nil
	}

	fields := []string{fieldLookupHash, fieldSalt, fieldIV, fieldEncryptedURL}
	values := make(map[string]string, len(fields))
	var missing []string
	for _, f := range fields {
		v, ok := req[f].(string)
		if !ok {
			missing = append(missing, f)
			continue
		}
		values[f] = v
	}
	if len(missing) > 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error: fmt.Sprintf("Missing fields: %s", strings.Join(missing, ", ")),
		})
		return
	}

	err := s.links.StoreClientLink(r.Context(), services.ClientLink{
		LookupHash: values[fieldLookupHash],
		Salt:       values[fieldSalt],
		IV:         values[fieldIV],
		Ciphertext: values[fieldEncryptedURL],
	})
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusCreated, messageResponse{Message: "URL shortened successfully"})
}

func (s *Server) handleGetEncryptedURL(w http.ResponseWriter, r *http.Request) {
	hash := r.URL.Query().Get("lookup_hash")
	if hash == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Missing lookup_hash parameter"})
		return
	}

	m, err := s.links.GetClientLink(r.Context(), hash)
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, encryptedURLResponse{
		Salt:         hex.EncodeToString(m.Salt),
		IV:           hex.EncodeToString(m.IV),
		EncryptedURL: hex.EncodeToString(m.Ciphertext),
	})
}

func (s *Server) handleRedirect(w http.ResponseWriter, r *http.Request) {
	res, err := s.links.Resolve(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}

	if res.Removed {
		s.writeRemovedPage(w, r)
		return
	}
	http.Redirect(w, r, res.URL, http.StatusFound)
}

func (s *Server) handleDeleteURL(w http.ResponseWriter, r *http.Request) {
	var req deleteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		req = deleteRequest{}
	}

	if _, err := s.links.Takedown(r.Context(), req.ID, req.DeletionToken); err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "URL replaced with abuse warning successfully"})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "OK"})
}
