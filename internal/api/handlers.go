package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/variant-reports-service/internal/domain"
)

// Gene handlers

func (s *Server) handleListGenes(c *gin.Context) {
	genes, err := s.genes.List(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, genes)
}

func (s *Server) handleCreateGene(c *gin.Context) {
	payload, err := bindPayload(c)
	if err != nil {
		s.respondError(c, err)
		return
	}

	gene, err := s.genes.Create(c.Request.Context(), payload)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gene)
}

func (s *Server) handleGetGene(c *gin.Context) {
	id, ok := geneID(c)
	if !ok {
		respondNotFound(c, domain.EntityGene)
		return
	}

	gene, err := s.genes.Get(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gene)
}

func (s *Server) handleUpdateGene(c *gin.Context) {
	id, ok := geneID(c)
	if !ok {
		respondNotFound(c, domain.EntityGene)
		return
	}

	payload, err := bindPayload(c)
	if err != nil {
		s.respondError(c, err)
		return
	}

	gene, err := s.genes.Update(c.Request.Context(), id, payload)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gene)
}

func (s *Server) handleDeleteGene(c *gin.Context) {
	id, ok := geneID(c)
	if !ok {
		respondNotFound(c, domain.EntityGene)
		return
	}

	if err := s.genes.Delete(c.Request.Context(), id); err != nil {
		s.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Variant handlers

func (s *Server) handleListVariants(c *gin.Context) {
	variants, err := s.variants.List(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, variants)
}

func (s *Server) handleCreateVariant(c *gin.Context) {
	payload, err := bindPayload(c)
	if err != nil {
		s.respondError(c, err)
		return
	}

	variant, err := s.variants.Create(c.Request.Context(), payload)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, variant)
}

func (s *Server) handleGetVariant(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		respondNotFound(c, domain.EntityVariant)
		return
	}

	variant, err := s.variants.Get(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, variant)
}

func (s *Server) handleUpdateVariant(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		respondNotFound(c, domain.EntityVariant)
		return
	}

	payload, err := bindPayload(c)
	if err != nil {
		s.respondError(c, err)
		return
	}

	variant, err := s.variants.Update(c.Request.Context(), id, payload)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, variant)
}

func (s *Server) handleDeleteVariant(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		respondNotFound(c, domain.EntityVariant)
		return
	}

	if err := s.variants.Delete(c.Request.Context(), id); err != nil {
		s.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Report handlers

func (s *Server) handleListReports(c *gin.Context) {
	reports, err := s.reports.List(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reports)
}

// handleCreateReport forwards the caller's Authorization header to the
// clinic service unchanged
func (s *Server) handleCreateReport(c *gin.Context) {
	payload, err := bindPayload(c)
	if err != nil {
		s.respondError(c, err)
		return
	}

	report, err := s.reports.Create(c.Request.Context(), domain.CreateReportRequest{
		Payload:       payload,
		Authorization: c.GetHeader("Authorization"),
	})
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, report)
}

func (s *Server) handleGetReport(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		respondNotFound(c, domain.EntityReport)
		return
	}

	report, err := s.reports.Get(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (s *Server) handleDeleteReport(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		respondNotFound(c, domain.EntityReport)
		return
	}

	if err := s.reports.Delete(c.Request.Context(), id); err != nil {
		s.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleListPatientReports(c *gin.Context) {
	reports, err := s.reports.ListByPatient(c.Request.Context(), c.Param("patientId"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reports)
}
