package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/simp-lee/partsweb/internal/domain"
	"github.com/simp-lee/partsweb/internal/notify"
)

const (
	unknownErrorMessage = "Ocorreu um erro desconhecido."
	networkErrorPrefix  = "Erro de rede ou cliente: "
	validationPrefix    = "Erro de validação: "

	defaultUnauthorized = "Sessão expirada ou credenciais inválidas."
	defaultForbidden    = "Você não tem permissão para esta ação."
)

// Notifier receives the alert produced for a failed request.
type Notifier interface {
	Publish(domain.Alert)
}

// ErrorTranslation annotates every failed request with a user-facing message,
// publishes it as one danger alert and returns the same error to the caller.
// The alert goes to the hub carried by the request context; fallback is used
// when the context has none and may be nil. A request canceled by its caller
// publishes nothing.
func ErrorTranslation(fallback Notifier, logger *slog.Logger) Interceptor {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next Handler) Handler {
		return func(req *http.Request) (*http.Response, error) {
			resp, err := next(req)
			if err == nil {
				return resp, nil
			}

			msg := TranslateError(err)
			var httpErr *domain.HTTPError
			if errors.As(err, &httpErr) {
				httpErr.Message = msg
			}
			if errors.Is(err, context.Canceled) {
				logger.DebugContext(req.Context(), "request canceled", slog.String("url", req.URL.String()))
				return nil, err
			}

			alert := domain.Alert{Type: domain.AlertDanger, Message: msg, Timeout: domain.DefaultAlertTimeout}
			switch hub := notify.FromContext(req.Context()); {
			case hub != nil:
				hub.Publish(alert)
			case fallback != nil:
				fallback.Publish(alert)
			default:
				logger.WarnContext(req.Context(), "no notifier for request error", slog.String("message", msg))
			}
			return nil, err
		}
	}
}

// TranslateError derives the user-facing message for a failed request.
// A message carried by the response body replaces the per-status default.
func TranslateError(err error) string {
	if err == nil {
		return ""
	}
	var httpErr *domain.HTTPError
	if !errors.As(err, &httpErr) {
		return unknownErrorMessage
	}
	if httpErr.Status == 0 {
		cause := "sem resposta do servidor"
		if httpErr.Err != nil {
			cause = httpErr.Err.Error()
		}
		return networkErrorPrefix + cause
	}

	if msg, ok := bodyMessage(httpErr.Body); ok {
		return msg
	}
	return statusMessage(httpErr.Status, httpErr.StatusText)
}

func statusMessage(status int, statusText string) string {
	if statusText == "" {
		statusText = http.StatusText(status)
	}
	switch status {
	case http.StatusBadRequest:
		return "Requisição Inválida (400): " + statusText
	case http.StatusUnauthorized:
		return "Não Autorizado (401): " + defaultUnauthorized
	case http.StatusForbidden:
		return "Acesso Negado (403): " + defaultForbidden
	case http.StatusNotFound:
		return "Recurso Não Encontrado (404): " + statusText
	case http.StatusConflict:
		return "Conflito de Dados (409): " + statusText
	case http.StatusInternalServerError:
		return "Erro Interno do Servidor (500): " + statusText
	default:
		return fmt.Sprintf("Erro HTTP %d: %s", status, statusText)
	}
}

// bodyMessage extracts message, detail or the errors map, in that order,
// from a JSON object body. Keys of the errors map keep their body order.
func bodyMessage(body []byte) (string, bool) {
	dec := json.NewDecoder(bytes.NewReader(body))
	if tok, err := dec.Token(); err != nil || tok != json.Delim('{') {
		return "", false
	}

	var message, detail string
	var validation []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return "", false
		}
		key, _ := tok.(string)
		switch key {
		case "message":
			message = decodeString(dec)
		case "detail":
			detail = decodeString(dec)
		case "errors":
			validation = decodeErrorMap(dec)
		default:
			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				return "", false
			}
		}
	}

	switch {
	case message != "":
		return message, true
	case detail != "":
		return detail, true
	case len(validation) > 0:
		return validationPrefix + strings.Join(validation, "; "), true
	}
	return "", false
}

func decodeString(dec *json.Decoder) string {
	var v any
	if err := dec.Decode(&v); err != nil {
		return ""
	}
	s, _ := v.(string)
	return s
}

// decodeErrorMap flattens {"field": ["a", "b"], "other": "c"} into
// ["a", "b", "c"] following the field order of the body.
func decodeErrorMap(dec *json.Decoder) []string {
	tok, err := dec.Token()
	if err != nil {
		return nil
	}
	if tok != json.Delim('{') {
		if d, ok := tok.(json.Delim); ok && (d == '[') {
			skipArray(dec)
		}
		return nil
	}

	var out []string
	for dec.More() {
		if _, err := dec.Token(); err != nil {
			return out
		}
		var v any
		if err := dec.Decode(&v); err != nil {
			return out
		}
		out = append(out, flatten(v)...)
	}
	_, _ = dec.Token()
	return out
}

func skipArray(dec *json.Decoder) {
	for dec.More() {
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return
		}
	}
	_, _ = dec.Token()
}

func flatten(v any) []string {
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		return []string{t}
	case []any:
		var out []string
		for _, item := range t {
			out = append(out, flatten(item)...)
		}
		return out
	default:
		return []string{fmt.Sprint(t)}
	}
}
