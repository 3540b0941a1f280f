package flag

import (
	"flag"
)

var (
	// ServiceName is used as the client-identifying tag on database
	// connections and in log lines.
	ServiceName = flag.String("service_name", "news_backend", "name of the running service")

	// Addr is the listen address of the HTTP server.
	Addr = flag.String("addr", ":8080", "HTTP listen address")
)

func ParseFlags() {
	flag.Parse()
}
