package server

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/lvillar/proposalpdf/export"
	"github.com/lvillar/proposalpdf/printer"
)

// printLegacy serves /print?action=print_proposal&proposal_id=N and
// /print?action=print_brochure&brochure_id=N.
func (s *Server) printLegacy(c *gin.Context) {
	cmd, err := printer.ParseLegacyQuery(c.Request.URL.Query())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.print(c, cmd)
}

func (s *Server) printProposal(c *gin.Context) {
	s.printRoute(c, printer.ActionPrintProposal)
}

func (s *Server) printBrochure(c *gin.Context) {
	s.printRoute(c, printer.ActionPrintBrochure)
}

func (s *Server) printRoute(c *gin.Context, action printer.ActionKind) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	cmd, err := printer.NewCommand(action, id)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if v := c.Query("conforme"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid conforme."})
			return
		}
		cmd.IncludeConforme = &b
	}
	s.print(c, cmd)
}

func (s *Server) print(c *gin.Context, cmd printer.Command) {
	out, err := s.printer.Print(c.Request.Context(), cmd)
	if err != nil {
		s.fail(c, err, printer.NotFoundMessage(cmd.Action))
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", out.Filename))
	c.Header("X-Render-Id", cmd.RenderID.String())
	c.Header("X-Render-Warnings", strconv.Itoa(len(out.Warnings)))
	c.Data(http.StatusOK, "application/pdf", out.PDF)
}

func (s *Server) exportProposal(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	p, err := s.store.ProposalWithItems(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err, printer.NotFoundMessage(printer.ActionPrintProposal))
		return
	}
	var buf bytes.Buffer
	if err := export.CostBreakdown(&buf, p.Name, p.Currency, printer.LineItems(p.Items)); err != nil {
		s.fail(c, err, "")
		return
	}
	name := export.Filename(printer.Filename(p.Name))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Data(http.StatusOK, export.ContentType, buf.Bytes())
}
