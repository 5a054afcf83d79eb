package apiclient

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/simp-lee/partsweb/internal/domain"
	"github.com/simp-lee/partsweb/internal/notify"
)

func TestTranslateError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"network", &domain.HTTPError{Err: errors.New("connection refused")}, "Erro de rede ou cliente: connection refused"},
		{"400 default", &domain.HTTPError{Status: 400, StatusText: "Bad Request"}, "Requisição Inválida (400): Bad Request"},
		{"401 default", &domain.HTTPError{Status: 401, StatusText: "Unauthorized"}, "Não Autorizado (401): Sessão expirada ou credenciais inválidas."},
		{"403 default", &domain.HTTPError{Status: 403, StatusText: "Forbidden"}, "Acesso Negado (403): Você não tem permissão para esta ação."},
		{"404 default", &domain.HTTPError{Status: 404, StatusText: "Not Found"}, "Recurso Não Encontrado (404): Not Found"},
		{"409 default", &domain.HTTPError{Status: 409}, "Conflito de Dados (409): Conflict"},
		{"500 default", &domain.HTTPError{Status: 500, StatusText: "Internal Server Error"}, "Erro Interno do Servidor (500): Internal Server Error"},
		{"unknown 4xx", &domain.HTTPError{Status: 418, StatusText: "I'm a teapot"}, "Erro HTTP 418: I'm a teapot"},
		{"unknown 5xx", &domain.HTTPError{Status: 503, StatusText: "Service Unavailable"}, "Erro HTTP 503: Service Unavailable"},
		{"body message", &domain.HTTPError{Status: 404, Body: []byte(`{"message":"Peça não encontrada"}`)}, "Peça não encontrada"},
		{"body detail", &domain.HTTPError{Status: 400, Body: []byte(`{"title":"Bad","detail":"id inválido"}`)}, "id inválido"},
		{"message beats detail", &domain.HTTPError{Status: 400, Body: []byte(`{"detail":"d","message":"m"}`)}, "m"},
		{
			"errors map in key order",
			&domain.HTTPError{Status: 400, Body: []byte(`{"errors":{"name":["obrigatório","curto"],"partNumber":["obrigatório"],"aaa":"único"}}`)},
			"Erro de validação: obrigatório; curto; obrigatório; único",
		},
		{"empty message falls back", &domain.HTTPError{Status: 404, StatusText: "Not Found", Body: []byte(`{"message":""}`)}, "Recurso Não Encontrado (404): Not Found"},
		{"non-object body", &domain.HTTPError{Status: 500, StatusText: "Internal Server Error", Body: []byte(`oops`)}, "Erro Interno do Servidor (500): Internal Server Error"},
		{"plain error", errors.New("boom"), "Ocorreu um erro desconhecido."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TranslateError(tt.err); got != tt.want {
				t.Errorf("TranslateError() = %q; want %q", got, tt.want)
			}
		})
	}
}

func TestErrorTranslation_PublishesOnceAndReturnsError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}, ErrorTranslation(nil, nil))

	hub := notify.NewHub(nil)
	var alerts []domain.Alert
	hub.Subscribe(func(a domain.Alert) { alerts = append(alerts, a) })
	ctx := notify.WithHub(context.Background(), hub)

	err := Delete(ctx, c, "categories", "c1")
	if !domain.IsNotFound(err) {
		t.Fatalf("error should still be a 404, got %v", err)
	}
	if len(alerts) != 1 {
		t.Fatalf("published %d alerts; want 1", len(alerts))
	}
	if alerts[0].Type != domain.AlertDanger || !strings.Contains(alerts[0].Message, "Não Encontrado") {
		t.Errorf("alert = %+v", alerts[0])
	}
	if err.Error() != alerts[0].Message {
		t.Errorf("error text %q should equal alert %q", err.Error(), alerts[0].Message)
	}
}

func TestErrorTranslation_SuccessPassesThrough(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[]`)
	}, ErrorTranslation(nil, nil))

	hub := notify.NewHub(nil)
	published := false
	hub.Subscribe(func(domain.Alert) { published = true })

	if _, err := Get[[]domain.Category](notify.WithHub(context.Background(), hub), c, "categories", "", nil); err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if published {
		t.Error("successful call should not publish")
	}
}

type recordingNotifier struct{ alerts []domain.Alert }

func (r *recordingNotifier) Publish(a domain.Alert) { r.alerts = append(r.alerts, a) }

func TestErrorTranslation_FallbackNotifier(t *testing.T) {
	fallback := &recordingNotifier{}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = io.WriteString(w, `{"message":"Categoria já existe"}`)
	}, ErrorTranslation(fallback, nil))

	_, err := Post[domain.Category](context.Background(), c, "categories", domain.Category{Name: "x"})
	if !domain.IsAlreadyExists(err) {
		t.Fatalf("expected 409, got %v", err)
	}
	if len(fallback.alerts) != 1 || fallback.alerts[0].Message != "Categoria já existe" {
		t.Errorf("fallback alerts = %+v", fallback.alerts)
	}
}

func TestErrorTranslation_CanceledRequestStaysQuiet(t *testing.T) {
	release := make(chan struct{})
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-release
	}, ErrorTranslation(nil, nil))
	defer close(release)

	hub := notify.NewHub(nil)
	var alerts []domain.Alert
	hub.Subscribe(func(a domain.Alert) { alerts = append(alerts, a) })
	ctx, cancel := context.WithCancel(notify.WithHub(context.Background(), hub))
	cancel()

	_, err := Get[[]domain.Category](ctx, c, "categories", "", nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v; want context.Canceled", err)
	}
	if len(alerts) != 0 {
		t.Errorf("canceled request published %+v", alerts)
	}
}
