package anaf

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	domanaf "github.com/jhoicas/efactura-api/internal/domain/anaf"
)

// maxResponseBytes tope de lectura; los ZIP de /descarcare rara vez superan unos pocos MB.
// Una respuesta mayor es un error, nunca se trunca.
var maxResponseBytes int64 = 64 << 20

// Content types usados por el SPV.
const (
	ContentTypeText = "text/plain"
	ContentTypeJSON = "application/json"
	ContentTypeZip  = "application/zip"
)

// Request petición hacia el SPV.
type Request struct {
	Method      string
	URL         string
	Body        []byte
	ContentType string
	Header      map[string]string
}

// Response respuesta completa del SPV. Si el cuerpo es JSON, Structured es true y Data
// contiene el objeto decodificado.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	Structured bool
	Data       map[string]any
}

// Text cuerpo como texto.
func (r *Response) Text() string { return string(r.Body) }

// Client ejecuta peticiones sobre un Channel. No reintenta: un /upload repetido
// genera un segundo índice de carga en ANAF.
type Client struct {
	logger zerolog.Logger
}

// NewClient construye el cliente de protocolo.
func NewClient(logger zerolog.Logger) *Client {
	return &Client{logger: logger}
}

// Execute envía la petición y clasifica el resultado:
// fallo de transporte -> *ConnectivityError; HTTP >= 400 -> *RemoteServiceError.
func (c *Client) Execute(ctx context.Context, ch *Channel, req Request) (*Response, error) {
	if ch == nil {
		return nil, fmt.Errorf("anaf: canal nulo")
	}
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, req.URL, body)
	if err != nil {
		return nil, fmt.Errorf("anaf: crear request: %w", err)
	}
	httpReq.Header.Set("Accept", ContentTypeJSON)
	if req.ContentType != "" {
		httpReq.Header.Set("Content-Type", req.ContentType)
	}
	for k, v := range req.Header {
		httpReq.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := ch.HTTPClient().Do(httpReq)
	if err != nil {
		c.logger.Debug().Err(err).Str("method", method).Str("url", req.URL).Msg("anaf: fallo de transporte")
		return nil, &domanaf.ConnectivityError{URL: req.URL, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		return nil, &domanaf.ConnectivityError{URL: req.URL, Err: fmt.Errorf("leer respuesta: %w", err)}
	}
	if int64(len(raw)) > maxResponseBytes {
		c.logger.Warn().Str("url", req.URL).Int64("limit", maxResponseBytes).Msg("anaf: respuesta demasiado grande")
		return nil, &domanaf.ConnectivityError{
			URL: req.URL,
			Err: fmt.Errorf("%w (más de %d bytes)", domanaf.ErrResponseTooLarge, maxResponseBytes),
		}
	}

	c.logger.Debug().
		Str("method", method).
		Str("url", req.URL).
		Int("status", resp.StatusCode).
		Int("bytes", len(raw)).
		Dur("latency", time.Since(start)).
		Msg("anaf: respuesta")

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, &domanaf.RemoteServiceError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	out := &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: raw}
	var data map[string]any
	if len(bytes.TrimSpace(raw)) > 0 && json.Unmarshal(raw, &data) == nil {
		out.Structured = true
		out.Data = data
	}
	return out, nil
}
