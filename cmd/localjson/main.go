// Command localjson reads, writes and watches JSON documents in a local
// directory, in memory or in a MinIO bucket.
//
//	localjson [flags] get <key>
//	localjson [flags] put <key> <json|->
//	localjson [flags] rm <key>
//	localjson [flags] exists <key>
//	localjson [flags] ls [dir]
//	localjson [flags] watch [-every 1s] <key>
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
