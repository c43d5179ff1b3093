package notify

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/smtp"
	"net/textproto"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ateliepro/atelier-api/internal/domain"
	"github.com/ateliepro/atelier-api/internal/domain/entity"
	"github.com/ateliepro/atelier-api/pkg/config"
)

func testPayload() entity.AlertPayload {
	return entity.AlertPayload{
		Name:        "Botão Dourado",
		Quantity:    decimal.NewFromInt(3),
		MinQuantity: decimal.NewFromInt(5),
		Unit:        "unidad",
		Supplier:    "Casa del Botón",
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Email: clasificación de fallas SMTP
// ──────────────────────────────────────────────────────────────────────────────

func TestEmailSend_ExitoConstruyeMensaje(t *testing.T) {
	var gotTo []string
	var gotMsg []byte
	sender := NewEmailSender(config.SMTPConfig{
		Host: "smtp.example.com", Port: 587, From: "alertas@example.com", FromName: "Atelier",
	})
	sender.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		assert.Equal(t, "smtp.example.com:587", addr)
		gotTo, gotMsg = to, msg
		return nil
	}

	err := sender.Send(context.Background(), "taller@example.com", testPayload())
	require.NoError(t, err)
	assert.Equal(t, []string{"taller@example.com"}, gotTo)
	assert.Contains(t, string(gotMsg), "Subject: Alerta de stock: Botão Dourado")
	assert.Contains(t, string(gotMsg), "Cantidad actual: 3 unidad")
	assert.Contains(t, string(gotMsg), "Proveedor: Casa del Botón")
}

func TestEmailSend_Codigo5xxEsPermanente(t *testing.T) {
	sender := NewEmailSender(config.SMTPConfig{Host: "smtp.example.com", Port: 587})
	sender.send = func(string, smtp.Auth, string, []string, []byte) error {
		return &textproto.Error{Code: 550, Msg: "mailbox unavailable"}
	}

	err := sender.Send(context.Background(), "nadie@example.com", testPayload())
	var dErr *domain.DeliveryError
	require.ErrorAs(t, err, &dErr)
	assert.False(t, dErr.Transient, "un rechazo 5xx no debe reintentarse")
	assert.Equal(t, entity.ChannelEmail, dErr.Channel)
}

func TestEmailSend_Codigo4xxYRedSonTransitorios(t *testing.T) {
	sender := NewEmailSender(config.SMTPConfig{Host: "smtp.example.com", Port: 587})

	sender.send = func(string, smtp.Auth, string, []string, []byte) error {
		return &textproto.Error{Code: 451, Msg: "try again later"}
	}
	var dErr *domain.DeliveryError
	require.ErrorAs(t, sender.Send(context.Background(), "a@example.com", testPayload()), &dErr)
	assert.True(t, dErr.Transient, "4xx se reintenta en la próxima corrida")

	sender.send = func(string, smtp.Auth, string, []string, []byte) error {
		return errors.New("dial tcp: connection refused")
	}
	require.ErrorAs(t, sender.Send(context.Background(), "a@example.com", testPayload()), &dErr)
	assert.True(t, dErr.Transient, "una falla de red es transitoria")
}

func TestEmailSend_SinConfiguracionEsPermanente(t *testing.T) {
	sender := NewEmailSender(config.SMTPConfig{})
	var dErr *domain.DeliveryError
	require.ErrorAs(t, sender.Send(context.Background(), "a@example.com", testPayload()), &dErr)
	assert.False(t, dErr.Transient)
}

// ──────────────────────────────────────────────────────────────────────────────
// WhatsApp: clasificación de respuestas del gateway
// ──────────────────────────────────────────────────────────────────────────────

func TestWhatsappSend_ExitoPostJSON(t *testing.T) {
	var gotAuth, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		buf, _ := io.ReadAll(r.Body)
		gotBody = string(buf)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	sender := NewWhatsappSender(config.WhatsappConfig{APIURL: srv.URL, Token: "secreto"})
	err := sender.Send(context.Background(), "+5511999990000", testPayload())
	require.NoError(t, err)
	assert.Equal(t, "Bearer secreto", gotAuth)
	assert.Contains(t, gotBody, `"to":"+5511999990000"`)
	assert.Contains(t, gotBody, "Botão Dourado")
}

func TestWhatsappSend_4xxPermanente5xxTransitorio(t *testing.T) {
	status := http.StatusBadRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
	}))
	defer srv.Close()
	sender := NewWhatsappSender(config.WhatsappConfig{APIURL: srv.URL})

	var dErr *domain.DeliveryError
	require.ErrorAs(t, sender.Send(context.Background(), "+55", testPayload()), &dErr)
	assert.False(t, dErr.Transient, "400 del gateway es permanente")

	status = http.StatusBadGateway
	require.ErrorAs(t, sender.Send(context.Background(), "+55", testPayload()), &dErr)
	assert.True(t, dErr.Transient, "502 del gateway es transitorio")
}

func TestWhatsappSend_SinConfiguracionEsPermanente(t *testing.T) {
	sender := NewWhatsappSender(config.WhatsappConfig{})
	var dErr *domain.DeliveryError
	require.ErrorAs(t, sender.Send(context.Background(), "+55", testPayload()), &dErr)
	assert.False(t, dErr.Transient)
}

// ──────────────────────────────────────────────────────────────────────────────
// Dispatcher
// ──────────────────────────────────────────────────────────────────────────────

type recordingSender struct{ calls int }

func (r *recordingSender) Send(context.Context, string, entity.AlertPayload) error {
	r.calls++
	return nil
}

func TestDispatcher_EnrutaPorCanal(t *testing.T) {
	email := &recordingSender{}
	whatsapp := &recordingSender{}
	d := NewDispatcher(email, whatsapp)

	require.NoError(t, d.Send(context.Background(), entity.ChannelEmail, "a@example.com", testPayload()))
	require.NoError(t, d.Send(context.Background(), entity.ChannelWhatsapp, "+55", testPayload()))
	assert.Equal(t, 1, email.calls)
	assert.Equal(t, 1, whatsapp.calls)

	err := d.Send(context.Background(), "paloma", "plaza", testPayload())
	var dErr *domain.DeliveryError
	require.ErrorAs(t, err, &dErr)
	assert.False(t, dErr.Transient, "un canal desconocido nunca se reintenta")
}
