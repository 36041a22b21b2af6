// Package api wires up the Gin HTTP router that fronts a Chord node: the
// REST surface clients actually talk to, translating verbs into the same
// Dispatch calls the peer protocol uses internally.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"chordkv/internal/chordnode"
	"chordkv/internal/peer"
)

// Handler holds the dependencies injected from main.
type Handler struct {
	node *chordnode.Node
}

// NewHandler creates a Handler.
func NewHandler(node *chordnode.Node) *Handler {
	return &Handler{node: node}
}

// Register mounts all routes on r.
func (h *Handler) Register(r *gin.Engine) {
	r.POST("/put", h.Put)
	r.GET("/get/:key", h.Get)
	r.DELETE("/delete/:key", h.Delete)

	cluster := r.Group("/cluster")
	cluster.GET("/nodes", h.ListNodes)
	cluster.POST("/join", h.Join)
}

// Put handles POST /put.
// Body: {"key": "<string>", "value": "<string>"}
func (h *Handler) Put(c *gin.Context) {
	var body struct {
		Key   string `json:"key" binding:"required"`
		Value string `json:"value" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	resp := h.node.Dispatch(c.Request.Context(), peer.Message{
		Operation: peer.OpStoreKey,
		Key:       body.Key,
		Value:     body.Value,
	})
	if resp.Status == "error" {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": resp.Message})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "key": resp.Key})
}

// Get handles GET /get/:key.
func (h *Handler) Get(c *gin.Context) {
	key := c.Param("key")

	resp := h.node.Dispatch(c.Request.Context(), peer.Message{
		Operation: peer.OpFindKey,
		Key:       key,
	})
	if resp.Status == "error" {
		message := resp.Message
		if message == chordnode.ErrNotFound.Error() {
			message = "Key not found"
		}
		c.JSON(http.StatusNotFound, gin.H{"status": "error", "message": message})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "key": resp.Key, "value": resp.Value})
}

// Delete handles DELETE /delete/:key.
func (h *Handler) Delete(c *gin.Context) {
	key := c.Param("key")

	resp := h.node.Dispatch(c.Request.Context(), peer.Message{
		Operation: peer.OpDeleteKey,
		Key:       key,
	})
	if resp.Status == "error" {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": resp.Message})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted", "key": resp.Key})
}

// ListNodes handles GET /cluster/nodes. This supplements spec.md's HTTP
// contract with an introspection endpoint the original Python source
// never had, used by the CLI's "cluster nodes" command and by tests that
// assert membership convergence across nodes.
func (h *Handler) ListNodes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"nodes": h.node.Table().Snapshot()})
}

// Join handles POST /cluster/join. It lets an operator trigger the join
// handshake against a running node interactively, in addition to the
// seed address a joining node is normally started with (see cmd/chordkvd).
// Body: {"seed": "host:port"}.
//
// There is no matching "leave" endpoint: spec §3 states the membership
// table "never shrinks in this spec" — removing a node from the ring is
// out of scope, not an oversight.
func (h *Handler) Join(c *gin.Context) {
	var body struct {
		Seed string `json:"seed" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	if err := h.node.Join(c.Request.Context(), body.Seed); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "joined", "seed": body.Seed})
}
