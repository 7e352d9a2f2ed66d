package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"time"

	"github.com/w1xm/dir_interface/internal/config"
	"github.com/w1xm/dir_interface/scheduler"
)

var (
	configPath = flag.String("config", "dir.yaml", "node configuration file")
	addr       = flag.String("addr", "", "address to listen on (overrides server.addr)")
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	if err := config.Validate(cfg); err != nil {
		log.Fatalf("config validation failed: %v", err)
	}
	config.Normalize(cfg)
	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sched := scheduler.New(time.Duration(cfg.Simulation.StepMs) * time.Millisecond)
	var nodes []*Node
	for _, nc := range cfg.Nodes {
		n, err := NewNode(ctx, nc, sched)
		if err != nil {
			log.Fatal(err)
		}
		log.Printf("node %s: %s", nc.ID, nc.Backend)
		nodes = append(nodes, n)
	}
	go func() {
		if err := sched.Run(ctx); err != nil && err != context.Canceled {
			log.Printf("scheduler: %v", err)
		}
	}()

	s := NewServer(nodes)
	srv := &http.Server{
		Handler:      s.Router(cfg.Server.StaticDir),
		Addr:         cfg.Server.Addr,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}
	log.Printf("Listening on %v", srv.Addr)
	log.Fatal(srv.ListenAndServe())
}
