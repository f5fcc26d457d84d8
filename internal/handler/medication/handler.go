package medication

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/joshwoodland/boredcertified/internal/handler"
	"github.com/joshwoodland/boredcertified/internal/model"
	"github.com/joshwoodland/boredcertified/internal/service/medication"
	"github.com/joshwoodland/boredcertified/internal/taper"
)

type Handler struct {
	service *medication.Service
}

func NewHandler(service *medication.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	patients := r.Group("/patients/:id")
	{
		patients.POST("/medications", h.CreateMedication)
		patients.GET("/medications", h.ListMedications)
		patients.GET("/timeline", h.Timeline)
	}
	meds := r.Group("/medications")
	{
		meds.GET("/:medID", h.GetMedication)
		meds.PUT("/:medID", h.UpdateMedication)
		meds.DELETE("/:medID", h.DeleteMedication)
		meds.POST("/:medID/taper", h.ComputeTaper)
		meds.POST("/:medID/taper/email", h.EmailTaperPlan)
	}
}

func (h *Handler) CreateMedication(c *gin.Context) {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid patient ID"))
		return
	}

	var req model.CreateMedicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	created, err := h.service.CreateMedication(c.Request.Context(), patientID, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(created))
}

func (h *Handler) GetMedication(c *gin.Context) {
	id, err := uuid.Parse(c.Param("medID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid medication ID"))
		return
	}

	med, err := h.service.GetMedication(c.Request.Context(), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(med))
}

func (h *Handler) UpdateMedication(c *gin.Context) {
	id, err := uuid.Parse(c.Param("medID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid medication ID"))
		return
	}

	var req model.UpdateMedicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	med, err := h.service.UpdateMedication(c.Request.Context(), id, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(med))
}

func (h *Handler) DeleteMedication(c *gin.Context) {
	id, err := uuid.Parse(c.Param("medID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid medication ID"))
		return
	}

	if err := h.service.DeleteMedication(c.Request.Context(), id); err != nil {
		handler.RespondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) ListMedications(c *gin.Context) {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid patient ID"))
		return
	}

	activeOnly := c.Query("active") == "true"
	meds, err := h.service.ListMedications(c.Request.Context(), patientID, activeOnly)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(meds))
}

// ComputeTaper returns the step-down schedule for a medication, both as
// structured steps and as a rendered markdown table. An empty body
// selects the default 25% / 2-week / discontinue-at-zero policy.
func (h *Handler) ComputeTaper(c *gin.Context) {
	id, err := uuid.Parse(c.Param("medID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid medication ID"))
		return
	}

	var opts model.TaperOptions
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&opts); err != nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
			return
		}
	}

	plan, err := h.service.BuildTaperPlan(c.Request.Context(), id, opts)
	if err != nil {
		if errors.Is(err, taper.ErrInvalidOptions) {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
			return
		}
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(plan))
}

func (h *Handler) EmailTaperPlan(c *gin.Context) {
	id, err := uuid.Parse(c.Param("medID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid medication ID"))
		return
	}

	var opts model.TaperOptions
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&opts); err != nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
			return
		}
	}

	if err := h.service.EmailTaperPlan(c.Request.Context(), id, opts); err != nil {
		if errors.Is(err, taper.ErrInvalidOptions) {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
			return
		}
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, handler.NewSuccessResponse(gin.H{"sent": true}))
}

func (h *Handler) Timeline(c *gin.Context) {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid patient ID"))
		return
	}

	entries, err := h.service.Timeline(c.Request.Context(), patientID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(entries))
}
