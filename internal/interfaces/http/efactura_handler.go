package http

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/efactura-api/internal/application/dto"
	"github.com/jhoicas/efactura-api/internal/application/efactura"
	"github.com/jhoicas/efactura-api/internal/domain"
	domanaf "github.com/jhoicas/efactura-api/internal/domain/anaf"
	"github.com/jhoicas/efactura-api/internal/domain/entity"
	"github.com/jhoicas/efactura-api/internal/domain/repository"
	"github.com/jhoicas/efactura-api/internal/infrastructure/anaf"
	"github.com/jhoicas/efactura-api/pkg/vault"
)

// maxBatchItems tope de facturas por lote; los envíos son secuenciales.
const maxBatchItems = 100

// ChannelInvalidator lo implementa *anaf.CachedChannelFactory.
type ChannelInvalidator interface {
	Invalidate(companyID string)
}

// EFacturaHandler expone el servicio e-Factura (protegido, módulo efactura).
type EFacturaHandler struct {
	svc         *efactura.Service
	certs       repository.CertificateConfigRepository
	vault       *vault.Vault
	certDir     string
	invalidator ChannelInvalidator
	logger      zerolog.Logger
}

// NewEFacturaHandler construye el handler. invalidator puede ser nil (sin caché de canales).
func NewEFacturaHandler(
	svc *efactura.Service,
	certs repository.CertificateConfigRepository,
	v *vault.Vault,
	certDir string,
	invalidator ChannelInvalidator,
	logger zerolog.Logger,
) *EFacturaHandler {
	return &EFacturaHandler{
		svc:         svc,
		certs:       certs,
		vault:       v,
		certDir:     certDir,
		invalidator: invalidator,
		logger:      logger.With().Str("component", "efactura_http").Logger(),
	}
}

// Submit godoc
// @Summary      Enviar factura al SPV
// @Tags         efactura
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                    true  "ID de la factura"
// @Param        body  body  dto.SubmitInvoiceRequest  true  "documento UBL y CIF opcional"
// @Success      202   {object}  dto.SubmitInvoiceResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      412   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.SubmitRejectedResponse
// @Failure      502   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/efactura/invoices/{id}/submit [post]
func (h *EFacturaHandler) Submit(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	invoiceID := c.Params("id")
	var in dto.SubmitInvoiceRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	ctx := c.UserContext()
	taxID, err := h.svc.ResolveTaxID(ctx, companyID, strings.TrimSpace(in.TaxID))
	if err != nil {
		return h.writeError(c, err)
	}
	uploadID, err := h.svc.Submit(ctx, companyID, invoiceID, []byte(in.Document), taxID)
	if err != nil {
		var rejected *domanaf.SubmissionRejectedError
		if errors.As(err, &rejected) {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.SubmitRejectedResponse{
				Code:    "SUBMISSION_REJECTED",
				Message: rejected.Message,
				Errors:  rejected.Errors,
			})
		}
		if uploadID != "" {
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
				Code:    "PERSIST_FAILED",
				Message: "ANAF aceptó la carga " + uploadID + " pero no se pudo registrar",
			})
		}
		return h.writeError(c, err)
	}
	return c.Status(fiber.StatusAccepted).JSON(dto.SubmitInvoiceResponse{
		InvoiceID: invoiceID,
		UploadID:  uploadID,
		Status:    entity.EFacturaStatusPending,
	})
}

// SubmitBatch godoc
// @Summary      Enviar un lote de facturas al SPV
// @Description  Envío secuencial; el fallo de una factura no detiene el resto.
// @Tags         efactura
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SubmitBatchRequest  true  "facturas del lote"
// @Success      200   {object}  dto.SubmitBatchResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/efactura/invoices/submit-batch [post]
func (h *EFacturaHandler) SubmitBatch(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.SubmitBatchRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if len(in.Items) == 0 || len(in.Items) > maxBatchItems {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "el lote debe tener entre 1 y 100 facturas"})
	}
	items := make([]efactura.BatchItem, 0, len(in.Items))
	for _, it := range in.Items {
		items = append(items, efactura.BatchItem{InvoiceID: it.InvoiceID, Document: []byte(it.Document), TaxID: it.TaxID})
	}
	report := h.svc.SubmitBatch(c.UserContext(), companyID, items)

	out := dto.SubmitBatchResponse{
		Total:    report.Total,
		Accepted: report.Accepted,
		Failed:   report.Failed,
		Results:  make([]dto.SubmitBatchResult, 0, len(report.Results)),
	}
	for _, r := range report.Results {
		out.Results = append(out.Results, dto.SubmitBatchResult{InvoiceID: r.InvoiceID, UploadID: r.UploadID, Error: r.Error, Errors: r.Errors})
	}
	return c.JSON(out)
}

// Status godoc
// @Summary      Consultar estado de una carga
// @Tags         efactura
// @Security     Bearer
// @Produce      json
// @Param        uploadId  path  string  true  "index_incarcare"
// @Success      200  {object}  dto.StatusResponse
// @Failure      412  {object}  dto.ErrorResponse
// @Failure      502  {object}  dto.ErrorResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/efactura/status/{uploadId} [get]
func (h *EFacturaHandler) Status(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	res, err := h.svc.CheckStatus(c.UserContext(), companyID, c.Params("uploadId"))
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(dto.StatusResponse{
		UploadID:    res.UploadID,
		RemoteState: res.RemoteState,
		Status:      res.Status,
		DownloadID:  res.DownloadID,
		Message:     res.Message,
		Errors:      res.Errors,
		InvoiceID:   res.InvoiceID,
		Matched:     res.Matched,
	})
}

// Download godoc
// @Summary      Descargar recibo ZIP de ANAF
// @Tags         efactura
// @Security     Bearer
// @Produce      application/zip
// @Param        downloadId  path  string  true  "id_descarcare"
// @Success      200
// @Failure      412  {object}  dto.ErrorResponse
// @Failure      502  {object}  dto.ErrorResponse
// @Router       /api/efactura/download/{downloadId} [get]
func (h *EFacturaHandler) Download(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	archive, err := h.svc.DownloadResponse(c.UserContext(), companyID, c.Params("downloadId"))
	if err != nil {
		return h.writeError(c, err)
	}
	ct := archive.ContentType
	if ct == "" {
		ct = anaf.ContentTypeZip
	}
	c.Set(fiber.HeaderContentType, ct)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+archive.DownloadID+`.zip"`)
	return c.Send(archive.Data)
}

// Receipt godoc
// @Summary      Extraer la factura o la firma del recibo ANAF
// @Tags         efactura
// @Security     Bearer
// @Produce      application/xml
// @Param        downloadId  path   string  true   "id_descarcare"
// @Param        part        query  string  false  "invoice (por defecto) o signature"
// @Success      200
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      502  {object}  dto.ErrorResponse
// @Router       /api/efactura/download/{downloadId}/xml [get]
func (h *EFacturaHandler) Receipt(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	part := c.Query("part", "invoice")
	if part != "invoice" && part != "signature" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "part debe ser invoice o signature"})
	}
	receipt, err := h.svc.DownloadReceipt(c.UserContext(), companyID, c.Params("downloadId"))
	if err != nil {
		return h.writeError(c, err)
	}
	body := receipt.InvoiceXML
	if part == "signature" {
		if receipt.SignatureXML == nil {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "el recibo no incluye firma"})
		}
		body = receipt.SignatureXML
	}
	if receipt.DocumentID != "" {
		c.Set("X-Document-Id", receipt.DocumentID)
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationXMLCharsetUTF8)
	return c.Send(body)
}

// Messages godoc
// @Summary      Buzón de mensajes SPV
// @Tags         efactura
// @Security     Bearer
// @Produce      json
// @Param        cif   query  string  false  "CIF (por defecto el de la empresa)"
// @Param        days  query  int     false  "ventana en días (60 por defecto)"
// @Param        page  query  int     false  "página desde 1; omitida = listado simple"
// @Success      200  {object}  dto.MessagesResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      412  {object}  dto.ErrorResponse
// @Router       /api/efactura/messages [get]
func (h *EFacturaHandler) Messages(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	ctx := c.UserContext()
	taxID, err := h.svc.ResolveTaxID(ctx, companyID, strings.TrimSpace(c.Query("cif")))
	if err != nil {
		return h.writeError(c, err)
	}
	if taxID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "cif requerido"})
	}
	days := c.QueryInt("days", 0)
	page := c.QueryInt("page", 0)

	if page <= 0 {
		msgs, err := h.svc.GetMessagesList(ctx, companyID, taxID, days)
		if err != nil {
			return h.writeError(c, err)
		}
		return c.JSON(dto.MessagesResponse{Messages: toMessageDTOs(msgs)})
	}
	res, err := h.svc.GetMessagesPaginated(ctx, companyID, taxID, page, days)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(dto.MessagesResponse{Messages: toMessageDTOs(res.Messages), Page: res.Page, HasMore: res.HasMore})
}

// DownloadReceived godoc
// @Summary      Descargar las facturas recibidas de proveedores
// @Tags         efactura
// @Security     Bearer
// @Produce      json
// @Param        cif   query  string  false  "CIF (por defecto el de la empresa)"
// @Param        days  query  int     false  "ventana en días (60 por defecto)"
// @Success      200  {object}  dto.DownloadReceivedResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      412  {object}  dto.ErrorResponse
// @Router       /api/efactura/received/download [post]
func (h *EFacturaHandler) DownloadReceived(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	ctx := c.UserContext()
	taxID, err := h.svc.ResolveTaxID(ctx, companyID, strings.TrimSpace(c.Query("cif")))
	if err != nil {
		return h.writeError(c, err)
	}
	if taxID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "cif requerido"})
	}
	report, err := h.svc.DownloadReceivedInvoices(ctx, companyID, taxID, c.QueryInt("days", 0))
	if err != nil {
		return h.writeError(c, err)
	}
	out := dto.DownloadReceivedResponse{
		Found:      report.Found,
		Downloaded: report.Downloaded,
		Failed:     report.Failed,
		Invoices:   make([]dto.ReceivedInvoiceResponse, 0, len(report.Invoices)),
		Errors:     report.Errors,
	}
	for _, inv := range report.Invoices {
		item := dto.ReceivedInvoiceResponse{
			MessageID:   inv.MessageID,
			SupplierCIF: inv.SupplierCIF,
			InvoiceName: inv.InvoiceName,
			DocumentID:  inv.DocumentID,
			IssueDate:   inv.IssueDate,
		}
		if !inv.CreatedAt.IsZero() {
			t := inv.CreatedAt
			item.CreatedAt = &t
		}
		out.Invoices = append(out.Invoices, item)
	}
	return c.JSON(out)
}

// Validate godoc
// @Summary      Validar XML UBL con ANAF
// @Tags         efactura
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ValidateRequest  true  "documento UBL"
// @Success      200  {object}  dto.ValidateResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/efactura/validate [post]
func (h *EFacturaHandler) Validate(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.ValidateRequest
	if err := c.BodyParser(&in); err != nil || strings.TrimSpace(in.XML) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "xml requerido"})
	}
	res, err := h.svc.ValidateXML(c.UserContext(), companyID, []byte(in.XML))
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(dto.ValidateResponse{Valid: res.Valid, Errors: res.Errors})
}

// Convert godoc
// @Summary      Convertir PDF a XML (transformare FCN)
// @Tags         efactura
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ConvertRequest  true  "PDF en base64"
// @Success      200  {object}  dto.ConvertResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/efactura/convert [post]
func (h *EFacturaHandler) Convert(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.ConvertRequest
	if err := c.BodyParser(&in); err != nil || strings.TrimSpace(in.PDFBase64) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "pdf_base64 requerido"})
	}
	doc, err := h.svc.ConvertPDFToXML(c.UserContext(), companyID, in.PDFBase64)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(dto.ConvertResponse{Document: doc})
}

// Sync godoc
// @Summary      Reconciliar facturas pendientes de la empresa
// @Tags         efactura
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.SyncResponse
// @Router       /api/efactura/sync [post]
func (h *EFacturaHandler) Sync(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	report := h.svc.SyncPendingInvoices(c.UserContext(), companyID)
	errs := report.Errors
	if errs == nil {
		errs = []string{}
	}
	return c.JSON(dto.SyncResponse{Synced: report.Synced, Failed: report.Failed, Errors: errs})
}

// GetCertificate godoc
// @Summary      Ver el certificado configurado (sin contraseña)
// @Tags         efactura
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.CertificateResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/efactura/certificate [get]
func (h *EFacturaHandler) GetCertificate(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	cfg, err := h.certs.GetByCompanyID(c.UserContext(), companyID)
	if err != nil {
		return h.writeError(c, err)
	}
	if cfg == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "certificado no configurado"})
	}
	out := dto.CertificateResponse{CompanyID: cfg.CompanyID, CertificateFile: cfg.CertificateFile, UpdatedAt: cfg.UpdatedAt}
	if path, err := anaf.ResolveCertificatePath(h.certDir, cfg.CertificateFile); err == nil {
		if cert, err := anaf.LoadCertificateFile(path, h.vault.Decrypt(cfg.CertificatePassword)); err == nil && cert.Leaf != nil {
			out.Subject = cert.Leaf.Subject.String()
			out.NotAfter = cert.Leaf.NotAfter
		}
	}
	return c.JSON(out)
}

// PutCertificate godoc
// @Summary      Configurar el certificado digital de la empresa
// @Tags         efactura
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CertificateRequest  true  "archivo (relativo a EFACTURA_CERT_DIR) y contraseña"
// @Success      200  {object}  dto.CertificateResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/efactura/certificate [put]
func (h *EFacturaHandler) PutCertificate(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.CertificateRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	in.CertificateFile = strings.TrimSpace(in.CertificateFile)
	if in.CertificateFile == "" || in.CertificatePassword == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "certificate_file y certificate_password requeridos"})
	}

	// Se valida antes de guardar: un certificado roto bloquearía todas las llamadas.
	path, err := anaf.ResolveCertificatePath(h.certDir, in.CertificateFile)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "CERTIFICATE_NOT_FOUND", Message: err.Error()})
	}
	cert, err := anaf.LoadCertificateFile(path, in.CertificatePassword)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "CERTIFICATE_INVALID", Message: err.Error()})
	}

	secret, err := h.vault.Encrypt(in.CertificatePassword)
	if err != nil {
		return h.writeError(c, err)
	}
	cfg := &entity.CertificateConfig{
		CompanyID:           companyID,
		CertificateFile:     in.CertificateFile,
		CertificatePassword: secret,
		UpdatedAt:           time.Now().UTC(),
	}
	if err := h.certs.Upsert(c.UserContext(), cfg); err != nil {
		return h.writeError(c, err)
	}
	if h.invalidator != nil {
		h.invalidator.Invalidate(companyID)
	}
	h.logger.Info().Str("company_id", companyID).Str("user_id", GetUserID(c)).Str("file", in.CertificateFile).Msg("certificado e-Factura actualizado")

	out := dto.CertificateResponse{CompanyID: companyID, CertificateFile: cfg.CertificateFile, UpdatedAt: cfg.UpdatedAt}
	if cert.Leaf != nil {
		out.Subject = cert.Leaf.Subject.String()
		out.NotAfter = cert.Leaf.NotAfter
	}
	return c.JSON(out)
}

// writeError traduce los errores tipados del servicio a HTTP.
func (h *EFacturaHandler) writeError(c *fiber.Ctx, err error) error {
	var (
		cfgErr    *domanaf.ConfigurationError
		connErr   *domanaf.ConnectivityError
		remoteErr *domanaf.RemoteServiceError
	)
	switch {
	case errors.As(err, &cfgErr):
		return c.Status(fiber.StatusPreconditionFailed).JSON(dto.ErrorResponse{Code: "CERTIFICATE_NOT_CONFIGURED", Message: cfgErr.Error()})
	case errors.As(err, &connErr):
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "ANAF_UNREACHABLE", Message: "no se pudo conectar con ANAF, intente más tarde"})
	case errors.As(err, &remoteErr):
		return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{Code: "ANAF_ERROR", Message: remoteErr.Error()})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, domain.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "recurso no encontrado"})
	}
	h.logger.Error().Err(err).Str("path", c.Path()).Msg("error interno e-Factura")
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}

func toMessageDTOs(msgs []entity.InboxMessage) []dto.InboxMessageResponse {
	out := make([]dto.InboxMessageResponse, 0, len(msgs))
	for _, m := range msgs {
		item := dto.InboxMessageResponse{
			ID:            m.ID,
			CreationDate:  m.CreationDate,
			TaxID:         m.TaxID,
			CorrelationID: m.CorrelationID,
			Detail:        m.Detail,
			Type:          m.Type,
		}
		if !m.CreatedAt.IsZero() {
			t := m.CreatedAt
			item.CreatedAt = &t
		}
		out = append(out, item)
	}
	return out
}
