/*
flag Package set up cli flags shared across services

Usage:

	Flags listed in this package are shared across boundaries and service-agnostic
	For service dependent flags please define in their respective package
*/

package flag

import (
	"flag"
	"os"
	"strings"
)

const (
	APIServer = "api_server"
)

var (
	IsDevelopment bool
	ServiceName   string
	ByPassAuth    bool
)

func init() {
	flag.BoolVar(&IsDevelopment, "dev", true, "set to true if the current run is for development. default value is true")
	flag.StringVar(&ServiceName, "service", APIServer, "service name reported to logging and tracing")
	flag.BoolVar(&ByPassAuth, "no_auth", false, "skip token validation and trust the sub header, local development only")
	// In test binaries the -test.* flags are not registered until m.Run,
	// so parsing here would fail on them; tests parse flags themselves.
	if !strings.HasSuffix(os.Args[0], ".test") {
		flag.Parse()
	}
}
