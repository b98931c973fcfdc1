package server

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fairshare/fairshare/internal/models"
	"github.com/fairshare/fairshare/internal/parser"
	"github.com/fairshare/fairshare/internal/service"
)

// billResponse is the envelope for every endpoint that returns bill state.
// The settlement is always the freshly recomputed one for the snapshot.
type billResponse struct {
	BillID     string             `json:"bill_id"`
	Bill       *models.Bill       `json:"bill"`
	Settlement *models.Settlement `json:"settlement"`
}

func respondResult(c *gin.Context, status int, result service.Result) {
	c.JSON(status, billResponse{
		BillID:     result.BillID,
		Bill:       result.Bill,
		Settlement: result.Settlement,
	})
}

func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrBillNotFound),
		errors.Is(err, service.ErrParticipantNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrLastParticipant):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, parser.ErrInvalidStructure):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	}
}

type parseRequest struct {
	ImageBase64  string `json:"image_base64"`
	Instructions string `json:"instructions"`
}

func (s *Server) parseBill(c *gin.Context) {
	var req parseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.ImageBase64 == "" && req.Instructions == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "an image or instructions are required"})
		return
	}

	result, err := s.svc.CreateFromReceipt(c.Request.Context(), req.ImageBase64, req.Instructions)
	if err != nil {
		respondError(c, err)
		return
	}
	respondResult(c, http.StatusCreated, result)
}

func (s *Server) createBill(c *gin.Context) {
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
		return
	}

	result, err := s.svc.CreateFromCandidate(raw)
	if err != nil {
		respondError(c, err)
		return
	}
	respondResult(c, http.StatusCreated, result)
}

func (s *Server) createDemoBill(c *gin.Context) {
	respondResult(c, http.StatusCreated, s.svc.CreateDemo())
}

func (s *Server) getBill(c *gin.Context) {
	result, err := s.svc.Get(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondResult(c, http.StatusOK, result)
}

func (s *Server) getSettlement(c *gin.Context) {
	result, err := s.svc.Get(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result.Settlement)
}

func (s *Server) deleteBill(c *gin.Context) {
	if err := s.svc.Delete(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type weightRequest struct {
	Weight float64 `json:"weight"`
}

func (s *Server) setAllocationWeight(c *gin.Context) {
	var req weightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	result, err := s.svc.SetAllocationWeight(
		c.Param("id"), c.Param("itemID"), c.Param("participantID"), req.Weight)
	if err != nil {
		respondError(c, err)
		return
	}
	respondResult(c, http.StatusOK, result)
}

type itemRequest struct {
	Description string  `json:"description"`
	Quantity    int     `json:"quantity"`
	TotalPrice  float64 `json:"total_price"`
}

func (s *Server) upsertItem(c *gin.Context) {
	var req itemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	item, result, err := s.svc.UpsertLineItem(c.Param("id"), models.LineItem{
		ID:          c.Param("itemID"), // empty on POST
		Description: req.Description,
		Quantity:    req.Quantity,
		TotalPrice:  req.TotalPrice,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"item":       item,
		"bill_id":    result.BillID,
		"bill":       result.Bill,
		"settlement": result.Settlement,
	})
}

func (s *Server) deleteItem(c *gin.Context) {
	result, err := s.svc.DeleteLineItem(c.Param("id"), c.Param("itemID"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondResult(c, http.StatusOK, result)
}

func (s *Server) addParticipant(c *gin.Context) {
	participant, result, err := s.svc.AddParticipant(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"participant": participant,
		"bill_id":     result.BillID,
		"bill":        result.Bill,
		"settlement":  result.Settlement,
	})
}

type renameRequest struct {
	Name string `json:"name"`
}

func (s *Server) renameParticipant(c *gin.Context) {
	var req renameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	result, err := s.svc.RenameParticipant(c.Param("id"), c.Param("participantID"), req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	respondResult(c, http.StatusOK, result)
}

func (s *Server) deleteParticipant(c *gin.Context) {
	result, err := s.svc.DeleteParticipant(c.Param("id"), c.Param("participantID"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondResult(c, http.StatusOK, result)
}

// modifierRequest carries a partial modifier update; absent fields are
// left untouched. Type and value map onto the two narrow store operations.
type modifierRequest struct {
	Type  *string  `json:"type"`
	Value *float64 `json:"value"`
}

func (s *Server) setModifier(c *gin.Context) {
	key := models.ModifierKey(c.Param("key"))
	if key != models.ModifierKeyTax && key != models.ModifierKeyTip {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown modifier"})
		return
	}

	var req modifierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.Type == nil && req.Value == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "type or value is required"})
		return
	}

	billID := c.Param("id")
	var (
		result service.Result
		err    error
	)
	if req.Type != nil {
		result, err = s.svc.SetModifierType(billID, key, models.ModifierType(*req.Type))
		if err != nil {
			respondError(c, err)
			return
		}
	}
	if req.Value != nil {
		result, err = s.svc.SetModifierValue(billID, key, *req.Value)
		if err != nil {
			respondError(c, err)
			return
		}
	}
	respondResult(c, http.StatusOK, result)
}

func (s *Server) paymentLink(c *gin.Context) {
	link, amount, err := s.svc.PaymentLink(c.Param("id"), c.Param("participantID"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"link": link, "amount": amount})
}
