package http

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/go-logr/logr"
	"golang.org/x/text/language"
)

// MaxJSONBody bounds request documents read by ReadJSON.
const MaxJSONBody = 1 << 20

// GetParam returns the path value called name, then the query value, then
// defaultValue.
func GetParam(name string, defaultValue string, r *http.Request) string {
	value := r.PathValue(name)

	if value == "" {
		value = r.URL.Query().Get(name)
	}

	if value == "" {
		return defaultValue
	}
	return value
}

func GetParamArray(name string, defaultValue []string, r *http.Request) []string {
	var values []string

	if value := r.PathValue(name); value != "" {
		values = []string{value}
	} else {
		values = r.URL.Query()[name]
	}

	if len(values) == 0 {
		return defaultValue
	}
	return values
}

// GetLang picks the response language: an explicit l10n parameter when supported,
// otherwise the best Accept-Language match, otherwise defaultLang.
func GetLang(r *http.Request, defaultLang string, supportedLangs []language.Tag) language.Tag {
	log := logr.FromContextOrDiscard(r.Context())
	fallback := language.Make(defaultLang)

	if len(supportedLangs) == 0 {
		return fallback
	}
	matcher := language.NewMatcher(supportedLangs)

	if fromParams := GetParam("l10n", "", r); fromParams != "" {
		tag, err := language.Parse(fromParams)
		if err != nil {
			log.V(1).Info("unparsable 'l10n' parameter, falling back to default", "l10n", fromParams, "defaultLang", defaultLang)
			return fallback
		}
		if _, index, confidence := matcher.Match(tag); confidence != language.No {
			return supportedLangs[index]
		}
		log.V(1).Info("unsupported 'l10n' parameter, falling back to default", "l10n", fromParams, "defaultLang", defaultLang)
		return fallback
	}

	preferences, _, err := language.ParseAcceptLanguage(r.Header.Get("Accept-Language"))
	if err != nil || len(preferences) == 0 {
		return fallback
	}

	_, index, confidence := matcher.Match(preferences...)
	if confidence == language.No {
		return fallback
	}
	return supportedLangs[index]
}

// ReadJSON decodes the request body into v.
func ReadJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, MaxJSONBody))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// ReadBody returns the raw request body.
func ReadBody(r *http.Request) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r.Body, MaxJSONBody+1))
	if err != nil {
		return nil, err
	}
	if len(data) > MaxJSONBody {
		return nil, fmt.Errorf("request body exceeds %d bytes", MaxJSONBody)
	}
	return data, nil
}

func WriteJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		logr.FromContextOrDiscard(r.Context()).Error(err, "failed to encode response")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

type errorBody struct {
	Error string `json:"error"`
}

// WriteError writes a JSON error document.
func WriteError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	WriteJSON(w, r, status, errorBody{Error: msg})
}
