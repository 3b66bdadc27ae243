package store

import (
	"fmt"
	"time"

	natsserver "github.com/nats-io/nats-server/v2/server"
)

// Embedded is an in-process NATS server with JetStream enabled. It lets
// allocd run standalone, with no external infrastructure, and backs the
// store tests.
type Embedded struct {
	srv *natsserver.Server
}

// StartEmbedded boots the embedded server on a random localhost port.
// dataDir holds the JetStream store; empty means a temporary directory.
func StartEmbedded(dataDir string) (*Embedded, error) {
	opts := &natsserver.Options{
		Host:      "127.0.0.1",
		Port:      -1,
		NoLog:     true,
		NoSigs:    true,
		JetStream: true,
		StoreDir:  dataDir,
	}

	srv, err := natsserver.NewServer(opts)
	if err != nil {
		return nil, fmt.Errorf("embedded nats server: %w", err)
	}

	go srv.Start()
	if !srv.ReadyForConnections(5 * time.Second) {
		srv.Shutdown()
		return nil, fmt.Errorf("embedded nats server not ready")
	}
	return &Embedded{srv: srv}, nil
}

// ClientURL returns the URL clients should connect to.
func (e *Embedded) ClientURL() string {
	return e.srv.ClientURL()
}

// Shutdown stops the server and waits for it to exit.
func (e *Embedded) Shutdown() {
	e.srv.Shutdown()
	e.srv.WaitForShutdown()
}
