package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ban2lab/longanicore-gateway/internal/translate"
)

// TranslateHandler serves the same-origin REST translation API used by
// the hosting page's own UI. It shares the cached translator with the
// message channel so both paths hit one cache.
type TranslateHandler struct {
	translator translate.Translator
}

// NewTranslateHandler creates the REST translation handler.
func NewTranslateHandler(translator translate.Translator) *TranslateHandler {
	return &TranslateHandler{translator: translator}
}

type translateRequest struct {
	Text           string `json:"text"`
	SourceLanguage string `json:"sourceLanguage"`
	TargetLanguage string `json:"targetLanguage"`
}

// Translate handles POST /api/v1/translate.
func (h *TranslateHandler) Translate(c *gin.Context) {
	var req translateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if strings.TrimSpace(req.Text) == "" || req.SourceLanguage == "" || req.TargetLanguage == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing required parameters"})
		return
	}
	if err := translate.ValidateLanguages(req.SourceLanguage, req.TargetLanguage); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.translator.Translate(c.Request.Context(), req.Text, req.SourceLanguage, req.TargetLanguage)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

// Languages handles GET /api/v1/languages.
func (h *TranslateHandler) Languages(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"languages": translate.Languages})
}
