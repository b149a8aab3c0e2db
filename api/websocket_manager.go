package api

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// connWithMutex wraps a WebSocket connection with its own mutex for thread-safe writes.
type connWithMutex struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

// writeWait bounds a single write to a client.
const writeWait = 10 * time.Second

// WSConnectionManager manages WebSocket connections for broadcasting.
type WSConnectionManager struct {
	mu          sync.RWMutex
	connections map[*websocket.Conn]*connWithMutex
	writeWait   time.Duration
}

// NewWSConnectionManager creates a new WebSocket connection manager.
func NewWSConnectionManager() *WSConnectionManager {
	return &WSConnectionManager{
		connections: make(map[*websocket.Conn]*connWithMutex),
		writeWait:   writeWait,
	}
}

// Add adds a connection to the manager.
func (m *WSConnectionManager) Add(conn *websocket.Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connections[conn] = &connWithMutex{conn: conn}
	metricWSClients.Set(float64(len(m.connections)))
}

// Remove removes a connection from the manager.
func (m *WSConnectionManager) Remove(conn *websocket.Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.connections, conn)
	metricWSClients.Set(float64(len(m.connections)))
}

// Len returns the number of tracked connections.
func (m *WSConnectionManager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.connections)
}

// Broadcast sends a message to all connected clients. Connections that fail
// the write are dropped.
func (m *WSConnectionManager) Broadcast(message any) {
	m.mu.RLock()
	conns := make([]*connWithMutex, 0, len(m.connections))
	for _, cwm := range m.connections {
		conns = append(conns, cwm)
	}
	m.mu.RUnlock()

	for _, cwm := range conns {
		cwm.mu.Lock()
		err := m.write(cwm.conn, message)
		cwm.mu.Unlock()

		if err != nil {
			m.Remove(cwm.conn)
			cwm.conn.Close()
		}
	}
}

// WriteJSON writes to a single connection under its mutex.
func (m *WSConnectionManager) WriteJSON(conn *websocket.Conn, message any) error {
	m.mu.RLock()
	cwm, exists := m.connections[conn]
	m.mu.RUnlock()

	if !exists {
		return m.write(conn, message)
	}

	cwm.mu.Lock()
	defer cwm.mu.Unlock()
	return m.write(cwm.conn, message)
}

func (m *WSConnectionManager) write(conn *websocket.Conn, message any) error {
	if err := conn.SetWriteDeadline(time.Now().Add(m.writeWait)); err != nil {
		return err
	}
	return conn.WriteJSON(message)
}
