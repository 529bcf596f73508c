package server

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/raushan1140/invoice-po-matcher/constants"
	"github.com/raushan1140/invoice-po-matcher/internal/entity"
	"github.com/raushan1140/invoice-po-matcher/internal/extract"
	"github.com/raushan1140/invoice-po-matcher/internal/repository"
)

// uploadInvoice accepts a PDF or image, runs OCR and field extraction
// through the worker pool, validates against purchase orders, persists the
// outcome and credits the submitting team.
func (s *Server) uploadInvoice(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file provided"})
		return
	}
	teamID := c.PostForm("team_id")

	filename := filepath.Base(fileHeader.Filename)
	if filename == "" || filename == "." {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file selected"})
		return
	}
	if !constants.IsAllowedExt(filepath.Ext(filename)) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File type not allowed. Please upload PDF or image files."})
		return
	}
	if fileHeader.Size > s.cfg.Upload.MaxSizeBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "File too large. Maximum size is 16MB."})
		return
	}

	if err := os.MkdirAll(s.cfg.Upload.Dir, 0o755); err != nil {
		s.logger.Error("upload.mkdir_failed", "dir", s.cfg.Upload.Dir, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not store uploaded file"})
		return
	}
	savedPath := filepath.Join(s.cfg.Upload.Dir, uuid.New().String()+"_"+filename)
	if err := c.SaveUploadedFile(fileHeader, savedPath); err != nil {
		s.logger.Error("upload.save_failed", "path", savedPath, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not store uploaded file"})
		return
	}

	invoice, err := s.pool.Parse(c.Request.Context(), savedPath, "")
	if err != nil {
		var extractionErr *extract.ExtractionError
		switch {
		case errors.Is(err, extract.ErrUnsupportedFileType):
			c.JSON(http.StatusBadRequest, gin.H{"error": "File type not allowed. Please upload PDF or image files."})
		case errors.As(err, &extractionErr):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to parse invoice", "details": err.Error()})
		default:
			s.logger.Error("upload.parse_failed", "path", savedPath, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("Processing error: %v", err)})
		}
		return
	}

	pos, err := s.store.ListPurchaseOrders(c.Request.Context())
	if err != nil {
		s.logger.Error("upload.po_snapshot_failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	result := s.validator.Validate(invoice, pos)

	s.persistInvoice(c, invoice, &result, teamID)

	c.JSON(http.StatusOK, gin.H{
		"success":           true,
		"invoice_data":      invoice,
		"validation_result": result,
		"filename":          filename,
	})
}

// persistInvoice stores the processed invoice, derives purchase orders from
// unseen line items and updates the leaderboard. Storage failures here are
// logged but do not fail the upload response; the caller already has the
// validation verdict.
func (s *Server) persistInvoice(c *gin.Context, invoice entity.InvoiceRecord, result *entity.ValidationResult, teamID string) {
	ctx := c.Request.Context()

	item, qty, unitPrice, total := "Unknown Item", 1, invoice.Total, invoice.Total
	if len(invoice.LineItems) > 0 {
		first := invoice.LineItems[0]
		item, qty, unitPrice, total = first.Item, first.Qty, first.UnitPrice, first.Total
	}

	var poID *string
	if len(result.Matches) > 0 {
		poID = &result.Matches[0].POID
	} else if result.BestMatch != nil {
		poID = &result.BestMatch.POID
	}

	row := repository.InvoiceRow{
		InvoiceID:        invoice.InvoiceNumber,
		Vendor:           invoice.Vendor,
		Item:             item,
		Qty:              qty,
		UnitPrice:        unitPrice,
		Total:            total,
		Date:             invoice.Date,
		POID:             poID,
		Status:           string(result.Summary.Status),
		ValidationResult: result,
	}
	if err := s.store.UpsertInvoice(ctx, row); err != nil {
		s.logger.Error("upload.invoice_save_failed", "invoice_id", invoice.InvoiceNumber, "error", err)
		return
	}

	// Line items without a matching PO become new purchase orders so later
	// uploads of the same goods reconcile against them.
	for _, li := range invoice.LineItems {
		_, err := s.store.FindPOByVendorItemDate(ctx, invoice.Vendor, li.Item, invoice.Date)
		if err == nil {
			continue
		}
		if !errors.Is(err, repository.ErrNotFound) {
			s.logger.Error("upload.po_lookup_failed", "item", li.Item, "error", err)
			continue
		}
		newPO := entity.PurchaseOrder{
			POID:      fmt.Sprintf("PO-%s-%s", invoice.InvoiceNumber, strings.ToUpper(strings.ReplaceAll(li.Item, " ", ""))),
			Vendor:    invoice.Vendor,
			Item:      li.Item,
			Qty:       li.Qty,
			UnitPrice: li.UnitPrice,
			Total:     li.Total,
			Date:      invoice.Date,
		}
		if err := s.store.InsertPurchaseOrder(ctx, newPO); err != nil {
			s.logger.Error("upload.po_insert_failed", "po_id", newPO.POID, "error", err)
			continue
		}
		s.logger.Info("upload.po_created", "po_id", newPO.POID, "item", li.Item)
	}

	if teamID != "" {
		scoreInc := 10
		if result.Summary.Status == constants.StatusApproved {
			scoreInc = 20
		}
		if err := s.store.UpdateTeamScore(ctx, teamID, 1, 0, scoreInc); err != nil {
			s.logger.Warn("upload.score_update_failed", "team_id", teamID, "error", err)
		}
	}
}

func (s *Server) listInvoices(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	invoices, total, err := s.store.ListInvoices(c.Request.Context(), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"invoices":    invoices,
		"total_count": total,
		"limit":       limit,
		"offset":      offset,
	})
}

func (s *Server) getInvoice(c *gin.Context) {
	invoice, err := s.store.GetInvoice(c.Request.Context(), c.Param("invoice_id"))
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Invoice not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "invoice": invoice})
}

// validateInvoice validates caller-supplied invoice data without a file
// upload. Useful for integrations and testing.
func (s *Server) validateInvoice(c *gin.Context) {
	var invoice entity.InvoiceRecord
	if err := c.ShouldBindJSON(&invoice); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No invoice data provided"})
		return
	}

	pos, err := s.store.ListPurchaseOrders(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	result := s.validator.Validate(invoice, pos)

	c.JSON(http.StatusOK, gin.H{"success": true, "validation_result": result})
}

func (s *Server) invoiceStats(c *gin.Context) {
	stats, err := s.store.GetInvoiceStats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "stats": stats})
}
