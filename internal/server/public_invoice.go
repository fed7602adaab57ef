package server

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"
)

// PublicPrintInvoice verifies the caller and redirects to the print view.
func (s *Server) PublicPrintInvoice(c *gin.Context) {
	phone := c.Query("phone")
	repairID := c.Query("repairId")

	v, err := s.publicInvoiceSvc.Verify(c.Request.Context(), phone, repairID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	query := url.Values{}
	query.Set("phone", phone)
	query.Set("repairId", repairID)
	c.Redirect(http.StatusFound, "/invoices/"+strconv.FormatInt(v.InvoiceID, 10)+"/print?"+query.Encode())
}

func (s *Server) PublicInvoiceSummary(c *gin.Context) {
	summary, err := s.publicInvoiceSvc.Summary(c.Request.Context(), c.Query("phone"), c.Query("repairId"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"invoice": summary,
	})
}
