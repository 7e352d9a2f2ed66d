// dir_logger follows every node on a dir_server and records each status
// change in InfluxDB.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"path"
	"time"

	"github.com/gorilla/websocket"
	influxdb2 "github.com/influxdata/influxdb-client-go"
	influxapi "github.com/influxdata/influxdb-client-go/api"
	"github.com/w1xm/dir_interface/internal/api"
	"golang.org/x/sync/errgroup"
)

func main() {
	server := os.Getenv("INFLUX_SERVER")
	if server == "" {
		server = "http://localhost:9999"
	}
	base := os.Getenv("DIR_SERVER")
	if base == "" {
		base = "http://localhost:8502"
	}
	client := influxdb2.NewClient(server, os.Getenv("INFLUX_TOKEN"))
	defer client.Close()
	writeApi := client.WriteApi("w1xm", "dir.raw")
	defer writeApi.Close()
	go func() {
		for err := range writeApi.Errors() {
			log.Printf("write error: %v", err)
		}
	}()
	ctx := context.Background()
	for {
		// Any node dropping out restarts the lot, which also picks up
		// nodes added since the last listing.
		if err := logNodes(ctx, base, writeApi); err != nil {
			log.Print(err)
		}
		time.Sleep(1 * time.Second)
	}
}

func listNodes(ctx context.Context, base string) ([]api.NodeStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"/api/nodes", nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("listing nodes: %s", resp.Status)
	}
	var nodes []api.NodeStatus
	if err := json.NewDecoder(resp.Body).Decode(&nodes); err != nil {
		return nil, fmt.Errorf("listing nodes: %w", err)
	}
	return nodes, nil
}

// socketURL returns the status websocket of node id on the server at base.
func socketURL(base, id string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	u.Path = path.Join("/", u.Path, "api/nodes", id, "ws")
	return u.String(), nil
}

func statusTags(s api.NodeStatus) map[string]string {
	return map[string]string{
		"node":    s.ID,
		"backend": s.Backend,
	}
}

func statusFields(s api.NodeStatus) map[string]interface{} {
	return map[string]interface{}{
		"beamwidth":           s.Status.Beamwidth,
		"orientation":         s.Status.Orientation,
		"x":                   s.Status.X,
		"y":                   s.Status.Y,
		"omni":                s.Omni,
		"antenna_orientation": s.Orientation,
	}
}

func logNodes(ctx context.Context, base string, writeApi influxapi.WriteApi) error {
	nodes, err := listNodes(ctx, base)
	if err != nil {
		return err
	}
	if len(nodes) == 0 {
		return fmt.Errorf("%s has no nodes", base)
	}
	defer writeApi.Flush()
	g, ctx := errgroup.WithContext(ctx)
	for _, n := range nodes {
		id := n.ID
		g.Go(func() error {
			if err := logNode(ctx, base, id, writeApi); err != nil {
				return fmt.Errorf("node %q: %w", id, err)
			}
			return nil
		})
	}
	return g.Wait()
}

func logNode(ctx context.Context, base, id string, writeApi influxapi.WriteApi) error {
	u, err := socketURL(base, id)
	if err != nil {
		return err
	}
	var dialer websocket.Dialer
	conn, _, err := dialer.DialContext(ctx, u, nil)
	if err != nil {
		return err
	}
	defer conn.Close()
	go func() {
		<-ctx.Done()
		conn.Close()
	}()
	for {
		var status api.NodeStatus
		if err := conn.ReadJSON(&status); err != nil {
			return err
		}
		writeApi.WritePoint(influxdb2.NewPoint("dir.status",
			statusTags(status),
			statusFields(status),
			time.Now(),
		))
	}
}
