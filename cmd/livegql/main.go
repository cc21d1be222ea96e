package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/livegql/livegql/internal/eventbus"
	"github.com/livegql/livegql/internal/livedata"
	"github.com/livegql/livegql/internal/otel"
	"github.com/livegql/livegql/internal/server"
	"github.com/livegql/livegql/schema"
)

const rootUsage = `livegql — live GraphQL over reactive streams

USAGE:
  livegql <command> [flags]

COMMANDS:
  serve            Serve a schema over HTTP with a live SSE endpoint,
                   backed by a watched JSON data file
  check            Parse and validate a schema SDL file
  help             Show help for any command
`

const serveUsage = `serve FLAGS:
  -schema <file>            GraphQL SDL file (required)
  -data <file>              JSON data file backing the Query root; edits to
                            the file re-emit every open live query (required)
  -server.addr <addr>       HTTP listen address (default: :8080)
  -server.pretty            Pretty-print JSON responses
  -server.timeout <dur>     POST first-result timeout, e.g. 10s (default: 10s)
  -otel.endpoint <addr>     OTLP collector endpoint
  -otel.service <name>      OpenTelemetry service name (default: livegql)
`

const checkUsage = `check FLAGS:
  -schema <file>   GraphQL SDL file (required)
`

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}

func run(args []string) error {
	global := flag.NewFlagSet("livegql", flag.ContinueOnError)
	global.SetOutput(new(bytes.Buffer)) // silence automatic output
	if err := global.Parse(args); err != nil {
		fmt.Fprint(os.Stderr, rootUsage)
		return err
	}
	remaining := global.Args()
	if len(remaining) == 0 {
		fmt.Fprint(os.Stderr, rootUsage)
		return fmt.Errorf("missing command")
	}

	switch cmd := remaining[0]; cmd {
	case "serve":
		return cmdServe(remaining[1:])
	case "check":
		return cmdCheck(remaining[1:])
	case "help":
		return cmdHelp(remaining[1:])
	default:
		fmt.Fprint(os.Stderr, rootUsage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func cmdHelp(args []string) error {
	if len(args) == 0 {
		fmt.Print(rootUsage)
		return nil
	}
	switch args[0] {
	case "serve":
		fmt.Print(serveUsage)
	case "check":
		fmt.Print(checkUsage)
	default:
		return fmt.Errorf("unknown help topic %q", args[0])
	}
	return nil
}

func cmdServe(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(new(bytes.Buffer))
	schemaPath := fs.String("schema", "", "")
	dataPath := fs.String("data", "", "")
	addr := fs.String("server.addr", ":8080", "")
	pretty := fs.Bool("server.pretty", false, "")
	timeout := fs.Duration("server.timeout", 10*time.Second, "")
	otelEndpoint := fs.String("otel.endpoint", "", "")
	otelService := fs.String("otel.service", "livegql", "")
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(os.Stderr, serveUsage)
		return err
	}
	if *schemaPath == "" || *dataPath == "" {
		fmt.Fprint(os.Stderr, serveUsage)
		return fmt.Errorf("-schema and -data are required")
	}

	eventbus.Use(eventbus.New())
	shutdown, err := otel.Setup(*otelEndpoint, *otelService)
	if err != nil {
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdown(ctx)
	}()

	sdl, err := os.ReadFile(*schemaPath)
	if err != nil {
		return err
	}
	watcher, err := livedata.Watch(*dataPath)
	if err != nil {
		return err
	}
	defer watcher.Close()

	sch, err := buildSchema(string(sdl), watcher)
	if err != nil {
		return err
	}

	opts := []server.Option{server.WithTimeout(*timeout)}
	if *pretty {
		opts = append(opts, server.WithPretty())
	}
	h := server.New(sch, opts...)
	defer h.Close()

	log.Printf("livegql serving %s on %s (data: %s)", *schemaPath, *addr, *dataPath)
	return http.ListenAndServe(*addr, h)
}

// buildSchema binds every Query root field to the watched document's
// same-named top-level property, so the whole query surface is live.
func buildSchema(sdl string, watcher *livedata.Watcher) (*schema.Schema, error) {
	probe, err := schema.FromSDL(sdl, nil)
	if err != nil {
		return nil, err
	}
	queryType := probe.GetQueryType()
	if queryType == nil {
		return nil, fmt.Errorf("schema has no query root type")
	}

	fields := make(map[string]schema.Resolver, len(queryType.Fields))
	for _, f := range queryType.Fields {
		name := f.Name
		fields[name] = func(ctx context.Context, parent any, args map[string]any, gctx any) (any, error) {
			return watcher.Field(name), nil
		}
	}
	return schema.FromSDL(sdl, schema.ResolverMap{queryType.Name: fields})
}

func cmdCheck(args []string) error {
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	fs.SetOutput(new(bytes.Buffer))
	schemaPath := fs.String("schema", "", "")
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(os.Stderr, checkUsage)
		return err
	}
	if *schemaPath == "" {
		fmt.Fprint(os.Stderr, checkUsage)
		return fmt.Errorf("-schema is required")
	}
	sdl, err := os.ReadFile(*schemaPath)
	if err != nil {
		return err
	}
	if _, err := schema.FromSDL(string(sdl), nil); err != nil {
		return err
	}
	fmt.Println("schema OK")
	return nil
}
