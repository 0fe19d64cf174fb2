package http

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
)

// DefinitionsController serves cached dictionary data.
type DefinitionsController struct {
	definitions DefinitionService
}

func NewDefinitionsController(definitions DefinitionService) *DefinitionsController {
	return &DefinitionsController{definitions: definitions}
}

type definitionResponse struct {
	Msg        string          `json:"msg"`
	Audio      string          `json:"audio"`
	Definition json.RawMessage `json:"definition"`
}

type updateDefinitionRequest struct {
	Word       string          `json:"word" binding:"required"`
	Audio      string          `json:"audio"`
	Definition json.RawMessage `json:"definition" binding:"required"`
}

// Get returns the definition for the :word path segment.
func (dc *DefinitionsController) Get(c *gin.Context) {
	result, err := dc.definitions.Definition(c.Request.Context(), c.Param("word"))
	if err != nil {
		respondServiceError(c, err, "definition")
		return
	}
	c.JSON(http.StatusOK, definitionResponse{
		Msg:        "Definition found",
		Audio:      result.Audio,
		Definition: result.Definition,
	})
}

// Update overrides the cached definition of a catalog word.
func (dc *DefinitionsController) Update(c *gin.Context) {
	var req updateDefinitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "word and definition are required")
		return
	}

	if err := dc.definitions.UpdateDefinition(c.Request.Context(), req.Word, req.Audio, req.Definition); err != nil {
		respondServiceError(c, err, "update definition")
		return
	}
	respondMsg(c, "Definition updated")
}
