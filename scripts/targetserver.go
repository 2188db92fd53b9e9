// Targetserver is a simple HTTP backend used for exercising the load
// balancer by hand. Every response identifies the serving instance, so
// round-robin distribution is visible from the client side.
//
// Usage:
//
//	go run targetserver.go -port 8081 -name alpha
//	go run targetserver.go -port 8082 -name beta
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"time"
)

type echoResponse struct {
	Instance string `json:"instance"`
	Method   string `json:"method"`
	Path     string `json:"path"`
	Query    string `json:"query"`
	Served   string `json:"served"`
}

func main() {
	port := flag.Int("port", 8081, "port to listen on")
	name := flag.String("name", "target", "instance name reported in responses")
	delay := flag.Duration("delay", 0, "artificial response delay for timeout testing")
	flag.Parse()

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if *delay > 0 {
			time.Sleep(*delay)
		}

		log.Printf("request: method=%s path=%s query=%s from=%s",
			r.Method, r.URL.Path, r.URL.RawQuery, r.RemoteAddr)

		resp := echoResponse{
			Instance: *name,
			Method:   r.Method,
			Path:     r.URL.Path,
			Query:    r.URL.RawQuery,
			Served:   time.Now().Format(time.RFC3339Nano),
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			log.Printf("encode failed: %v", err)
		}
	})

	addr := fmt.Sprintf(":%d", *port)
	log.Printf("starting target %q on %s", *name, addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
