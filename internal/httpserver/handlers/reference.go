package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/MrSnakeDoc/versefinder/internal/domain"
	"github.com/MrSnakeDoc/versefinder/internal/httpserver/deps"
	"github.com/MrSnakeDoc/versefinder/internal/reference"
)

// maxReferences caps a batch lookup.
const maxReferences = 200

type referenceResponse struct {
	Reference         string         `json:"reference"`
	ReadableReference string         `json:"readableReference"`
	Verses            []domain.Verse `json:"verses"`
}

type referencesRequest struct {
	References []string `json:"references"`
}

// ReferenceLookup resolves a structured reference posted as JSON.
func ReferenceLookup(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var ref reference.Reference
		if err := decodeJSON(w, r, &ref); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid reference", err, d.Logger)
			return
		}
		if err := ref.Validate(); err != nil {
			writeClassified(w, err, d.Logger)
			return
		}
		respondReference(w, r, d, ref)
	}
}

// ReferenceQuery resolves a reference string given as ?ref=John 3:16-18.
func ReferenceQuery(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := strings.TrimSpace(r.URL.Query().Get("ref"))
		if raw == "" {
			writeError(w, http.StatusBadRequest, "Invalid reference", errors.New("missing ref parameter"), d.Logger)
			return
		}

		ref, err := reference.Parse(raw)
		if err != nil {
			writeClassified(w, err, d.Logger)
			return
		}
		respondReference(w, r, d, ref)
	}
}

func respondReference(w http.ResponseWriter, r *http.Request, d deps.Deps, ref reference.Reference) {
	verses, err := d.Resolver.LookupReference(r.Context(), ref)
	if err != nil {
		writeClassified(w, err, d.Logger)
		return
	}
	writeJSON(w, http.StatusOK, referenceResponse{
		Reference:         ref.String(),
		ReadableReference: ref.Readable(),
		Verses:            verses,
	}, d.Logger)
}

// ReferenceBatch resolves many references at once. Verses shared between
// references are looked up only once. The response maps each requested
// reference to its verses, in expanded order.
func ReferenceBatch(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req referencesRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid references", err, d.Logger)
			return
		}
		if len(req.References) == 0 || len(req.References) > maxReferences {
			writeError(w, http.StatusBadRequest, "Invalid references",
				fmt.Errorf("between 1 and %d references are required", maxReferences), d.Logger)
			return
		}

		perRef := make(map[string][]string, len(req.References))
		keys := make([]string, 0, len(req.References))
		for _, raw := range req.References {
			ref, err := reference.Parse(raw)
			if err != nil {
				writeClassified(w, err, d.Logger)
				return
			}
			perRef[raw] = ref.PerVerse()
			keys = append(keys, perRef[raw]...)
		}

		found, err := d.Resolver.LookupMany(r.Context(), keys)
		if err != nil {
			writeClassified(w, err, d.Logger)
			return
		}

		out := make(map[string][]domain.Verse, len(perRef))
		for raw, refKeys := range perRef {
			verses := make([]domain.Verse, 0, len(refKeys))
			seen := make(map[string]struct{}, len(refKeys))
			for _, k := range refKeys {
				v, ok := found[k]
				if _, dup := seen[k]; !ok || dup {
					continue
				}
				seen[k] = struct{}{}
				verses = append(verses, v)
			}
			out[raw] = verses
		}

		writeJSON(w, http.StatusOK, out, d.Logger)
	}
}
