// Package sheetserve hosts a live spreadsheet over a websocket, grounded
// on the teacher's spreadsheet.Server: a single shared Sheet, a registry
// of connected clients, and a broadcast-on-change loop, adapted here to
// drive an engine.Context instead of the teacher's own tree-walking
// interpreter.
package sheetserve

import (
	"encoding/json"
	"log"
	"net/http"
	"os"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/cellengine/cellengine/engine"
	"github.com/cellengine/cellengine/internal/eval"
	"github.com/cellengine/cellengine/internal/notify"
	"github.com/cellengine/cellengine/internal/sheet"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// UpdateRequest is a client-to-server message.
type UpdateRequest struct {
	Type  string `json:"type"`
	ID    string `json:"id"`
	Value string `json:"value"`
}

// UpdateResponse is a server-to-client message: either a single cell's
// new raw/displayed value, or a "reset" telling clients the sheet was
// cleared.
type UpdateResponse struct {
	Type    string `json:"type"`
	ID      string `json:"id"`
	Value   string `json:"value"`
	Display string `json:"display"`
	Error   string `json:"error,omitempty"`
}

type client struct {
	id   string
	conn *websocket.Conn
}

// Server hosts one live sheet for any number of connected browsers.
type Server struct {
	ctx *engine.Context
	sht sheet.Handle

	mu      sync.Mutex
	clients map[string]*client

	pendingMu sync.Mutex
	pending   []UpdateResponse

	notifier *notify.Notifier
}

// NewServer creates an empty sheet named "Sheet1" and a context wired to
// broadcast every display change to connected clients.
func NewServer() *Server {
	s := &Server{clients: make(map[string]*client)}
	s.ctx = engine.NewContext(s)
	s.sht = s.ctx.CreateSheet("Sheet1")
	return s
}

// WithNotifier attaches an optional ZeroMQ publisher (spec §9) so changes
// also reach observers outside the websocket host.
func (s *Server) WithNotifier(n *notify.Notifier) *Server {
	s.notifier = n
	return s
}

// SetDisplayNumber implements engine.Ops.
func (s *Server) SetDisplayNumber(h sheet.Handle, row, col int32, v float64) {
	s.queue(h, row, col, UpdateResponse{Type: "cell_updated", Display: eval.FormatNumber(v)})
	if s.notifier != nil {
		s.notifier.PublishNumber(h, row, col, v)
	}
}

// SetDisplayString implements engine.Ops.
func (s *Server) SetDisplayString(h sheet.Handle, row, col int32, str string) {
	s.queue(h, row, col, UpdateResponse{Type: "cell_updated", Display: str})
	if s.notifier != nil {
		s.notifier.PublishString(h, row, col, str)
	}
}

// SetDisplayError implements engine.Ops.
func (s *Server) SetDisplayError(h sheet.Handle, row, col int32, msg string) {
	s.queue(h, row, col, UpdateResponse{Type: "cell_updated", Error: msg})
	if s.notifier != nil {
		s.notifier.PublishError(h, row, col, msg)
	}
}

func (s *Server) queue(h sheet.Handle, row, col int32, resp UpdateResponse) {
	resp.ID = formatCellID(row, col)
	if sh, ok := s.ctx.Sheet(h); ok {
		if raw := sh.Cell(row, col); !raw.IsNil() {
			resp.Value = s.ctx.AtomGetStr(raw)
		}
	}
	s.pendingMu.Lock()
	s.pending = append(s.pending, resp)
	s.pendingMu.Unlock()
}

func (s *Server) drainAndBroadcast() {
	s.pendingMu.Lock()
	batch := s.pending
	s.pending = nil
	s.pendingMu.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, resp := range batch {
		for id, c := range s.clients {
			if err := c.conn.WriteJSON(resp); err != nil {
				log.Printf("sheetserve: write to %s failed: %v", id, err)
				_ = c.conn.Close()
				delete(s.clients, id)
			}
		}
	}
}

// HandleWebSocket upgrades the connection, replays the current sheet, and
// then services update_cell requests until the client disconnects.
func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("sheetserve: upgrade error:", err)
		return
	}
	c := &client{id: uuid.NewString(), conn: conn}

	s.mu.Lock()
	s.clients[c.id] = c
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.clients, c.id)
		s.mu.Unlock()
		conn.Close()
	}()

	s.sendInitialState(conn)

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			break
		}
		var req UpdateRequest
		if err := json.Unmarshal(msg, &req); err != nil {
			log.Println("sheetserve: bad request:", err)
			continue
		}
		switch req.Type {
		case "update_cell":
			s.handleUpdate(req)
		case "clear":
			s.clear()
		}
	}
}

func (s *Server) handleUpdate(req UpdateRequest) {
	row, col, ok := parseCellID(req.ID)
	if !ok {
		return
	}
	s.ctx.SetCellStr(s.sht, row, col, req.Value)
	s.ctx.EvaluateFormulas([]sheet.Handle{s.sht})
	s.drainAndBroadcast()
}

func (s *Server) clear() {
	sh, ok := s.ctx.Sheet(s.sht)
	if !ok {
		return
	}
	for pos := range sh.Cells() {
		s.ctx.SetCellStr(s.sht, pos.Row, pos.Col, "")
	}
	s.mu.Lock()
	for _, c := range s.clients {
		_ = c.conn.WriteJSON(UpdateResponse{Type: "reset"})
	}
	s.mu.Unlock()
}

func (s *Server) sendInitialState(conn *websocket.Conn) {
	sh, ok := s.ctx.Sheet(s.sht)
	if !ok {
		return
	}
	for pos, a := range sh.Cells() {
		resp := UpdateResponse{
			Type:  "cell_updated",
			ID:    formatCellID(pos.Row, pos.Col),
			Value: s.ctx.AtomGetStr(a),
		}
		if cr, ok := sh.Result(pos.Row, pos.Col); ok {
			_, _, display := eval.DisplayString(s.ctx.Table(), cr)
			resp.Display = display
		}
		if err := conn.WriteJSON(resp); err != nil {
			log.Printf("sheetserve: initial state write failed: %v", err)
			return
		}
	}
}

// Start serves static assets from dir and the websocket endpoint at /ws.
func (s *Server) Start(addr, dir string) error {
	mux := http.NewServeMux()
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		log.Printf("sheetserve: static directory %s not found", dir)
	}
	mux.Handle("/", http.FileServer(http.Dir(dir)))
	mux.HandleFunc("/ws", s.HandleWebSocket)
	log.Printf("sheetserve: listening at http://%s", addr)
	return http.ListenAndServe(addr, mux)
}
