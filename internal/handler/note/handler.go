package note

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/joshwoodland/boredcertified/internal/handler"
	"github.com/joshwoodland/boredcertified/internal/model"
	"github.com/joshwoodland/boredcertified/internal/service/audit"
	"github.com/joshwoodland/boredcertified/internal/service/note"
)

type Handler struct {
	service *note.Service
}

func NewHandler(service *note.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	patients := r.Group("/patients/:id/notes")
	{
		patients.POST("", h.CreateNote)
		patients.GET("", h.ListNotes)
	}
	notes := r.Group("/notes")
	{
		notes.GET("/:noteID", h.GetNote)
		notes.PUT("/:noteID", h.UpdateNote)
		notes.DELETE("/:noteID", h.DeleteNote)
		notes.POST("/:noteID/summarize", h.SummarizeNote)
	}
}

// CreateNote synthesizes a SOAP note from the posted transcript and
// stores it as a draft for the authenticated clinician.
func (h *Handler) CreateNote(c *gin.Context) {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid patient ID"))
		return
	}

	var req model.CreateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	authorID, _ := c.Value(audit.ContextActorKey).(uuid.UUID)

	created, err := h.service.CreateFromTranscript(c.Request.Context(), patientID, authorID, req.Transcript)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(created))
}

func (h *Handler) GetNote(c *gin.Context) {
	id, err := uuid.Parse(c.Param("noteID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid note ID"))
		return
	}

	found, err := h.service.GetNote(c.Request.Context(), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(found))
}

func (h *Handler) UpdateNote(c *gin.Context) {
	id, err := uuid.Parse(c.Param("noteID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid note ID"))
		return
	}

	var req model.UpdateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	updated, err := h.service.UpdateNote(c.Request.Context(), id, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(updated))
}

func (h *Handler) DeleteNote(c *gin.Context) {
	id, err := uuid.Parse(c.Param("noteID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid note ID"))
		return
	}

	if err := h.service.DeleteNote(c.Request.Context(), id); err != nil {
		handler.RespondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) ListNotes(c *gin.Context) {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid patient ID"))
		return
	}

	var filters model.NoteFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	notes, err := h.service.ListNotes(c.Request.Context(), patientID, &filters)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(notes))
}

func (h *Handler) SummarizeNote(c *gin.Context) {
	id, err := uuid.Parse(c.Param("noteID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid note ID"))
		return
	}

	summary, err := h.service.Summarize(c.Request.Context(), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"summary": summary}))
}
