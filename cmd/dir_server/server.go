package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/w1xm/dir_interface/antenna"
	"github.com/w1xm/dir_interface/internal/api"
)

type Server struct {
	nodes map[string]*Node
	order []string
}

func NewServer(nodes []*Node) *Server {
	s := &Server{nodes: make(map[string]*Node)}
	for _, n := range nodes {
		s.nodes[n.ID] = n
		s.order = append(s.order, n.ID)
	}
	return s
}

func (s *Server) Router(staticDir string) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/api/nodes", s.NodesHandler).Methods("GET")
	r.HandleFunc("/api/nodes/{id}/status", s.StatusHandler).Methods("GET")
	r.HandleFunc("/api/nodes/{id}/gain", s.GainHandler).Methods("GET")
	r.HandleFunc("/api/nodes/{id}/link/{peer}", s.LinkHandler).Methods("GET")
	r.HandleFunc("/api/nodes/{id}/ws", s.StatusSocketHandler)
	if staticDir != "" {
		r.PathPrefix("/").Handler(http.FileServer(http.Dir(staticDir)))
	}
	return r
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

func (n *Node) nodeStatus() api.NodeStatus {
	status, _ := n.Status()
	return api.NodeStatus{
		ID:          n.ID,
		Backend:     n.Backend,
		Status:      status,
		Omni:        n.direction.Omni(),
		Orientation: n.direction.Orientation(),
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	data, err := json.Marshal(v)
	if err != nil {
		log.Print(err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Write(data)
}

func (s *Server) node(w http.ResponseWriter, r *http.Request) *Node {
	return s.lookup(w, mux.Vars(r)["id"])
}

func (s *Server) lookup(w http.ResponseWriter, id string) *Node {
	n, ok := s.nodes[id]
	if !ok {
		http.Error(w, "no such node", http.StatusNotFound)
		return nil
	}
	return n
}

func (s *Server) NodesHandler(w http.ResponseWriter, r *http.Request) {
	var out []api.NodeStatus
	for _, id := range s.order {
		out = append(out, s.nodes[id].nodeStatus())
	}
	writeJSON(w, out)
}

func (s *Server) StatusHandler(w http.ResponseWriter, r *http.Request) {
	n := s.node(w, r)
	if n == nil {
		return
	}
	writeJSON(w, n.nodeStatus())
}

func (s *Server) GainHandler(w http.ResponseWriter, r *http.Request) {
	n := s.node(w, r)
	if n == nil {
		return
	}
	var dst antenna.Position
	var err error
	if dst.X, err = strconv.ParseFloat(r.FormValue("x"), 64); err != nil {
		http.Error(w, "bad x: "+err.Error(), http.StatusBadRequest)
		return
	}
	if dst.Y, err = strconv.ParseFloat(r.FormValue("y"), 64); err != nil {
		http.Error(w, "bad y: "+err.Error(), http.StatusBadRequest)
		return
	}
	gain, err := n.direction.Gain(dst)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	writeJSON(w, api.GainResponse{Angle: n.direction.Angle(dst), Gain: gain})
}

// LinkHandler reports what peer hears when the node transmits at ptx dBm
// (default 0).
func (s *Server) LinkHandler(w http.ResponseWriter, r *http.Request) {
	tx := s.node(w, r)
	if tx == nil {
		return
	}
	rx := s.lookup(w, mux.Vars(r)["peer"])
	if rx == nil {
		return
	}
	var ptx float64
	if v := r.FormValue("ptx"); v != "" {
		var err error
		if ptx, err = strconv.ParseFloat(v, 64); err != nil {
			http.Error(w, "bad ptx: "+err.Error(), http.StatusBadRequest)
			return
		}
	}
	link, err := antenna.LinkBudget(tx.direction, rx.direction, ptx)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	writeJSON(w, link)
}

// apply runs a client command against the node.
func (n *Node) apply(msg api.Command) {
	switch msg.Command {
	case "init":
		n.dev.Init()
	case "set_beamwidth":
		n.dev.SetBeamwidth(msg.Value)
	case "set_orientation":
		n.dev.SetOrientation(msg.Value)
	case "set_xcoordinate":
		n.dev.SetXCoordinate(msg.Value)
	case "set_ycoordinate":
		n.dev.SetYCoordinate(msg.Value)
	case "set_antenna_type":
		n.direction.SetAntennaType(msg.Value)
	default:
		log.Printf("node %s: unknown command %q", n.ID, msg.Command)
	}
}

func (s *Server) StatusSocketHandler(w http.ResponseWriter, r *http.Request) {
	n := s.node(w, r)
	if n == nil {
		return
	}
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println(err)
		return
	}
	defer conn.Close()

	// Read and process incoming messages
	go func() {
		defer cancel()
		for {
			var msg api.Command
			if err := conn.ReadJSON(&msg); err != nil {
				return
			}
			n.apply(msg)
		}
	}()
	// Wake the watcher below on disconnect.
	go func() {
		<-ctx.Done()
		n.statusMu.Lock()
		n.statusCond.Broadcast()
		n.statusMu.Unlock()
	}()

	send := func(status api.NodeStatus) bool {
		if err := conn.WriteJSON(status); err != nil {
			log.Print(err)
			return false
		}
		return true
	}

	_, seen := n.Status()
	if !send(n.nodeStatus()) {
		return
	}
	for {
		n.statusMu.RLock()
		for n.version == seen && ctx.Err() == nil {
			n.statusCond.Wait()
		}
		seen = n.version
		n.statusMu.RUnlock()
		if ctx.Err() != nil {
			return
		}
		if !send(n.nodeStatus()) {
			return
		}
	}
}
