package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ban2lab/longanicore-gateway/internal/connlog"
	"github.com/ban2lab/longanicore-gateway/internal/store"
)

// AdminHandler serves the owner API: origin and global key management,
// the master API switch, and the connection log view. All routes sit
// behind the admin-key middleware.
type AdminHandler struct {
	store *store.CredentialStore
	audit *connlog.Log
}

// NewAdminHandler creates the admin handler.
func NewAdminHandler(credStore *store.CredentialStore, audit *connlog.Log) *AdminHandler {
	return &AdminHandler{store: credStore, audit: audit}
}

// ListOrigins returns all whitelisted origins and their keys.
// GET /api/v1/admin/origins
func (h *AdminHandler) ListOrigins(c *gin.Context) {
	creds, err := h.store.ListOrigins()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"origins": creds})
}

// GenerateOriginKey whitelists an origin, minting a fresh key. If the
// origin is already registered its key is replaced, never appended.
// POST /api/v1/admin/origins
func (h *AdminHandler) GenerateOriginKey(c *gin.Context) {
	var req struct {
		Origin string `json:"origin" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "origin is required"})
		return
	}

	key, err := h.store.GenerateOriginKey(req.Origin)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"origin":  store.NormalizeOrigin(req.Origin),
		"api_key": key,
	})
}

// RemoveOrigin revokes an origin's access.
// DELETE /api/v1/admin/origins?origin=...
func (h *AdminHandler) RemoveOrigin(c *gin.Context) {
	origin := c.Query("origin")
	if origin == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "origin query parameter is required"})
		return
	}

	if err := h.store.RemoveOrigin(origin); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": store.NormalizeOrigin(origin)})
}

// ListGlobalKeys returns all global keys.
// GET /api/v1/admin/global-keys
func (h *AdminHandler) ListGlobalKeys(c *gin.Context) {
	keys, err := h.store.ListGlobalKeys()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"global_keys": keys})
}

// AddGlobalKey mints a new global key with an optional label.
// POST /api/v1/admin/global-keys
func (h *AdminHandler) AddGlobalKey(c *gin.Context) {
	var req struct {
		Label string `json:"label"`
	}
	_ = c.ShouldBindJSON(&req) // label is optional; an empty body is fine

	key, err := h.store.AddGlobalKey(req.Label)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"key": key, "label": req.Label})
}

// RemoveGlobalKey revokes a global key.
// DELETE /api/v1/admin/global-keys?key=...
func (h *AdminHandler) RemoveGlobalKey(c *gin.Context) {
	key := c.Query("key")
	if key == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "key query parameter is required"})
		return
	}

	if err := h.store.RemoveGlobalKey(key); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": true})
}

// GetAPIStatus reports the master switch state.
// GET /api/v1/admin/api-status
func (h *AdminHandler) GetAPIStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"enabled": h.store.APIEnabled()})
}

// SetAPIStatus flips the master switch. While disabled, all inbound
// channel messages are dropped without a response.
// PUT /api/v1/admin/api-status
func (h *AdminHandler) SetAPIStatus(c *gin.Context) {
	var req struct {
		Enabled *bool `json:"enabled" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Enabled == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "enabled is required"})
		return
	}

	if err := h.store.SetAPIEnabled(*req.Enabled); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"enabled": *req.Enabled})
}

// GetConnectionLog returns the audit trail, newest first, capped at
// the log's fixed bound.
// GET /api/v1/admin/connection-log
func (h *AdminHandler) GetConnectionLog(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"entries": h.audit.Entries()})
}
