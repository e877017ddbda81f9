package cmd

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/mavyfaby/tiny-excel/config"
	"github.com/mavyfaby/tiny-excel/xlsx"
)

const writeWait = 10 * time.Second

var (
	serveAddr     string
	serveAutosave bool
)

var serveCmd = &cobra.Command{
	Use:   "serve <file>",
	Short: "Serve a workbook over a websocket for live editing",
	Long: `Load a workbook and expose it on a websocket endpoint (/ws).

Connected clients submit edits as JSON messages:
  {"sheet": 0, "address": "A1", "value": "hello", "kind": "string"}
with kind one of string (default), number, formula. Every applied edit is
broadcast to all clients as a change notification:
  {"sheet": 0, "seq": 3}

With --autosave the workbook file is rewritten after every applied edit.

Examples:
  tiny-excel serve report.xlsx
  tiny-excel serve report.xlsx --addr :9000 --autosave`,
	Args: cobra.ExactArgs(1),
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config, else :8080)")
	serveCmd.Flags().BoolVar(&serveAutosave, "autosave", false, "Rewrite the workbook file after every applied edit")
	rootCmd.AddCommand(serveCmd)
}

func resolveListenAddr() string {
	if serveAddr != "" {
		return serveAddr
	}
	cfg, err := config.Load()
	if err == nil && cfg.ListenAddr != "" {
		return cfg.ListenAddr
	}
	return ":8080"
}

// editMessage is a client-submitted cell write.
type editMessage struct {
	Sheet   int    `json:"sheet"`
	Address string `json:"address"`
	Value   string `json:"value"`
	Kind    string `json:"kind,omitempty"`
}

// changeMessage is broadcast to every client after an applied edit.
type changeMessage struct {
	Sheet int    `json:"sheet"`
	Seq   uint64 `json:"seq"`
}

type wsClient struct {
	id   string
	send chan changeMessage
}

// hub owns the workbook: every mutation runs on the hub goroutine, so the
// model itself stays single-threaded.
type hub struct {
	wb       *xlsx.Workbook
	path     string
	autosave bool

	edits      chan editMessage
	register   chan *wsClient
	unregister chan *wsClient
	clients    map[*wsClient]bool
	seq        uint64
}

func newHub(wb *xlsx.Workbook, path string, autosave bool) *hub {
	h := &hub{
		wb:         wb,
		path:       path,
		autosave:   autosave,
		edits:      make(chan editMessage),
		register:   make(chan *wsClient),
		unregister: make(chan *wsClient),
		clients:    make(map[*wsClient]bool),
	}
	// Invoked synchronously from applyEdit, on the hub goroutine.
	wb.OnChange(func(c xlsx.Change) {
		h.seq++
		h.broadcast(changeMessage{Sheet: c.Sheet, Seq: h.seq})
	})
	return h
}

func (h *hub) run() {
	for {
		select {
		case client := <-h.register:
			log.Printf("client %s connected", client.id)
			h.clients[client] = true
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				log.Printf("client %s disconnected", client.id)
				delete(h.clients, client)
				close(client.send)
			}
		case msg := <-h.edits:
			if err := h.applyEdit(msg); err != nil {
				log.Printf("edit %s rejected: %v", msg.Address, err)
				continue
			}
			if h.autosave {
				h.save()
			}
		}
	}
}

func (h *hub) applyEdit(msg editMessage) error {
	sheet, err := h.wb.GetSheet(msg.Sheet)
	if err != nil {
		return err
	}
	switch msg.Kind {
	case kindFormula:
		return sheet.SetFormula(msg.Address, msg.Value)
	case kindNumber:
		n, err := strconv.ParseFloat(msg.Value, 64)
		if err != nil {
			return fmt.Errorf("invalid number %q: %w", msg.Value, err)
		}
		return sheet.SetNumber(msg.Address, n)
	default:
		return sheet.SetCell(msg.Address, msg.Value)
	}
}

func (h *hub) save() {
	out, err := h.wb.SaveBuffer()
	if err != nil {
		log.Printf("autosave failed: %v", err)
		return
	}
	if err := os.WriteFile(h.path, out, 0o644); err != nil {
		log.Printf("autosave failed: %v", err)
		return
	}
	h.wb.ClearDirty()
}

func (h *hub) broadcast(msg changeMessage) {
	for client := range h.clients {
		select {
		case client.send <- msg:
		default:
			// Slow consumer: drop it rather than stall edits.
			delete(h.clients, client)
			close(client.send)
		}
	}
}

func (h *hub) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		log.Printf("websocket accept: %v", err)
		return
	}
	defer conn.CloseNow()

	client := &wsClient{id: uuid.NewString(), send: make(chan changeMessage, 16)}
	h.register <- client
	defer func() { h.unregister <- client }()

	go func() {
		for msg := range client.send {
			ctx, cancel := context.WithTimeout(context.Background(), writeWait)
			err := wsjson.Write(ctx, conn, msg)
			cancel()
			if err != nil {
				return
			}
		}
	}()

	for {
		var msg editMessage
		if err := wsjson.Read(r.Context(), conn, &msg); err != nil {
			return
		}
		h.edits <- msg
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	filePath := args[0]

	wb := xlsx.New(filePath)
	if err := wb.Load(xlsx.LoadOptions{}); err != nil {
		return err
	}

	h := newHub(wb, filePath, serveAutosave)
	go h.run()

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", h.handleWS)

	addr := resolveListenAddr()
	fmt.Fprintf(os.Stderr, "serving %s on %s/ws\n", filePath, addr)
	return http.ListenAndServe(addr, mux)
}
