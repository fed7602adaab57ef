package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	invoicedomain "github.com/smallbiznis/repairdesk/internal/invoice/domain"
)

// PrintInvoice serves the printable HTML document. A request carrying phone
// or repairId is verified against the repair request instead of the admin token.
func (s *Server) PrintInvoice(c *gin.Context) {
	id, err := parseInvoiceID(c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	ctx := c.Request.Context()
	phone := c.Query("phone")
	repairID := c.Query("repairId")

	if strings.TrimSpace(phone) != "" || strings.TrimSpace(repairID) != "" {
		if !s.allowPublic(c) {
			return
		}
		if _, err := s.publicInvoiceSvc.VerifyInvoice(ctx, phone, repairID, id); err != nil {
			AbortWithError(c, err)
			return
		}
	} else if !s.isAdmin(c) {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	html, err := s.invoiceSvc.RenderHTML(ctx, id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}

func (s *Server) DownloadInvoicePDF(c *gin.Context) {
	id, err := parseInvoiceID(c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	doc, err := s.invoiceSvc.RenderPDF(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	disposition := "attachment"
	if c.Query("inline") == "1" {
		disposition = "inline"
	}
	c.Header("Content-Disposition", disposition+`; filename="`+doc.Filename+`"`)
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "application/pdf", doc.Content)
}

func parseInvoiceID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, invoicedomain.ErrInvalidInvoiceID
	}
	return id, nil
}
