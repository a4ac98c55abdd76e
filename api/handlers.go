package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	log "github.com/sirupsen/logrus"

	"controlplane/routing"
	"controlplane/stats"
	"controlplane/topology"
)

// Handlers is the read-only query facade plus the two control verbs
// (mode change, forced reinstall). Everything it serves comes from the
// current immutable snapshot or a copied sample view; it never blocks on
// a rebuild in progress.
type Handlers struct {
	Store      *topology.Store
	Samples    *stats.SampleStore
	Manager    *routing.Manager
	HostPrefix string
}

// Register wires the facade's routes onto the mux.
func (h *Handlers) Register(mux *http.ServeMux) {
	mux.HandleFunc("/topology", h.handleTopology)
	mux.HandleFunc("/path", h.handlePath)
	mux.HandleFunc("/set_mode", h.handleSetMode)
	mux.HandleFunc("/reinstall", h.handleReinstall)
	mux.HandleFunc("/stats/links", h.handleLinkStats)
	mux.HandleFunc("/stats/switches", h.handleSwitchStats)
	mux.HandleFunc("/stats/flows", h.handleFlowStats)
}

func (h *Handlers) handleTopology(w http.ResponseWriter, r *http.Request) {
	snap := h.Store.Snapshot()
	RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"mode":  snap.Mode.String(),
		"nodes": snap.Nodes(),
		"links": snap.Edges(),
	})
}

func (h *Handlers) handlePath(w http.ResponseWriter, r *http.Request) {
	srcParam := r.URL.Query().Get("src")
	dstParam := r.URL.Query().Get("dst")
	if srcParam == "" || dstParam == "" {
		RespondWithError(w, http.StatusBadRequest, "use /path?src=<...>&dst=<...>")
		return
	}

	src, err := parseNode(srcParam, h.HostPrefix)
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	dst, err := parseNode(dstParam, h.HostPrefix)
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	snap := h.Store.Snapshot()
	path, err := snap.ShortestPath(src, dst)
	switch {
	case errors.Is(err, topology.ErrUnknownNode):
		RespondWithJSON(w, http.StatusNotFound, map[string]interface{}{
			"error": "src or dst is not in the graph",
			"nodes": snap.Nodes(),
		})
		return
	case errors.Is(err, topology.ErrNoPath):
		RespondWithError(w, http.StatusNotFound, "no path between src and dst")
		return
	case err != nil:
		RespondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	dstHostPort, _ := snap.HostPort(dst)
	RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"mode":          snap.Mode.String(),
		"src":           src,
		"dst":           dst,
		"path":          path.Nodes,
		"hops":          len(path.Nodes) - 1,
		"weight_sum":    path.Weight,
		"links":         path.Hops,
		"dst_host_port": dstHostPort,
	})
}

func (h *Handlers) handleSetMode(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		RespondWithError(w, http.StatusMethodNotAllowed, "POST only")
		return
	}

	var body struct {
		Mode string `json:"mode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		RespondWithError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	mode, err := topology.ParseMode(body.Mode)
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.Manager.SetMode(mode)
	RespondWithJSON(w, http.StatusOK, map[string]string{"mode": h.Store.Mode().String()})
}

func (h *Handlers) handleReinstall(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		RespondWithError(w, http.StatusMethodNotAllowed, "POST only")
		return
	}
	log.Info("reinstall requested via API")
	h.Manager.Trigger(routing.TriggerReinstall)
	RespondWithJSON(w, http.StatusOK, map[string]string{"status": "reinstalled"})
}

func (h *Handlers) handleLinkStats(w http.ResponseWriter, r *http.Request) {
	snap := h.Store.Snapshot()
	RespondWithJSON(w, http.StatusOK, stats.DeriveLinkStats(snap, h.Samples))
}

func (h *Handlers) handleSwitchStats(w http.ResponseWriter, r *http.Request) {
	snap := h.Store.Snapshot()
	RespondWithJSON(w, http.StatusOK, stats.DeriveSwitchStats(snap, h.Samples))
}

func (h *Handlers) handleFlowStats(w http.ResponseWriter, r *http.Request) {
	if dpidParam := r.URL.Query().Get("dpid"); dpidParam != "" {
		dpid, err := strconv.Atoi(dpidParam)
		if err != nil {
			RespondWithError(w, http.StatusBadRequest, "dpid must be an integer")
			return
		}
		RespondWithJSON(w, http.StatusOK, map[string]interface{}{
			"dpid":  dpid,
			"flows": h.Samples.Flows(dpid),
		})
		return
	}

	all := make(map[string]interface{})
	for _, id := range h.Samples.FlowSwitches() {
		all[strconv.Itoa(id)] = h.Samples.Flows(id)
	}
	RespondWithJSON(w, http.StatusOK, all)
}
