package efactura

import (
	"context"
	"fmt"
	"net/http"
	"time"

	domanaf "github.com/jhoicas/efactura-api/internal/domain/anaf"
	"github.com/jhoicas/efactura-api/internal/domain/entity"
	"github.com/jhoicas/efactura-api/internal/infrastructure/anaf"
)

// anafDateLayout formato de data_creare (yyyyMMddHHmm, hora de Bucarest).
const anafDateLayout = "200601021504"

var bucharest = loadBucharest()

func loadBucharest() *time.Location {
	if loc, err := time.LoadLocation("Europe/Bucharest"); err == nil {
		return loc
	}
	return time.UTC
}

// MessagesPage página del buzón.
type MessagesPage struct {
	Messages []entity.InboxMessage
	Page     int
	HasMore  bool
}

// GetMessagesList lista los mensajes de los últimos days días (60 si days <= 0).
// Una respuesta sin mensajes o con error remoto devuelve lista vacía, no error.
func (s *Service) GetMessagesList(ctx context.Context, companyID, taxID string, days int) ([]entity.InboxMessage, error) {
	if days <= 0 {
		days = domanaf.DefaultMessagesWindowDays
	}
	resp, err := s.call(ctx, companyID, anaf.Request{
		Method: http.MethodGet,
		URL:    s.endpoints.Messages(taxID, days),
	})
	if err != nil {
		return nil, fmt.Errorf("efactura: listar mensajes: %w", err)
	}
	return s.toInbox(companyID, resp), nil
}

// GetMessagesPaginated igual que GetMessagesList para una página (desde 1).
// HasMore es true solo cuando la página viene llena (anaf.MessagesPageSize).
func (s *Service) GetMessagesPaginated(ctx context.Context, companyID, taxID string, page, days int) (*MessagesPage, error) {
	if page < 1 {
		page = 1
	}
	if days <= 0 {
		days = domanaf.DefaultMessagesWindowDays
	}
	resp, err := s.call(ctx, companyID, anaf.Request{
		Method: http.MethodGet,
		URL:    s.endpoints.MessagesPage(taxID, days, page),
	})
	if err != nil {
		return nil, fmt.Errorf("efactura: listar mensajes (página %d): %w", page, err)
	}
	msgs := s.toInbox(companyID, resp)
	return &MessagesPage{
		Messages: msgs,
		Page:     page,
		HasMore:  domanaf.HasMorePages(len(msgs)),
	}, nil
}

func (s *Service) toInbox(companyID string, resp *anaf.Response) []entity.InboxMessage {
	items, remoteErr := anaf.ParseMessageList(resp)
	if remoteErr != "" {
		s.logger.Debug().Str("company_id", companyID).Str("reason", remoteErr).Msg("buzón sin mensajes")
	}
	out := make([]entity.InboxMessage, 0, len(items))
	for _, it := range items {
		msg := entity.InboxMessage{
			ID:            it.ID,
			CreationDate:  it.CreationDate,
			TaxID:         it.TaxID,
			CorrelationID: it.CorrelationID,
			Detail:        it.Detail,
			Type:          it.Type,
		}
		if t, err := time.ParseInLocation(anafDateLayout, it.CreationDate, bucharest); err == nil {
			msg.CreatedAt = t
		}
		out = append(out, msg)
	}
	return out
}
