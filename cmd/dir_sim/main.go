// dir_sim serves one simulated directional antenna over the dircomm line
// protocol, for use with a dir_server node of backend "tcp".
package main

import (
	"context"
	"flag"
	"io"
	"log"
	"net"

	"github.com/w1xm/dir_interface/dir"
	"github.com/w1xm/dir_interface/dir/sim"
	"github.com/w1xm/dir_interface/dircomm/simulator"
	"github.com/w1xm/dir_interface/scheduler"
)

var (
	addr       = flag.String("addr", "127.0.0.1:4533", "address to listen on")
	initialize = flag.Bool("init", true, "initialize the device at startup")
)

func main() {
	flag.Parse()
	ctx := context.Background()

	st := sim.New()
	if *initialize {
		st.Init()
	}
	dev := dir.Locked(st)

	sched := scheduler.New(scheduler.DefaultStep)
	sched.Register(sim.InterfaceName, st)
	go sched.Run(ctx)

	ln, err := net.Listen("tcp", *addr)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("Listening on %v", ln.Addr())
	for {
		conn, err := ln.Accept()
		if err != nil {
			log.Printf("failed to accept: %v", err)
			continue
		}
		log.Printf("accepted connection from %v", conn.RemoteAddr())
		go func() {
			if err := simulator.Serve(dev, conn).Run(ctx); err != nil && err != io.EOF {
				log.Printf("%v: %v", conn.RemoteAddr(), err)
			}
		}()
	}
}
