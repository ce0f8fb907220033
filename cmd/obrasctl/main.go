// obrasctl consulta y ajusta el catálogo desde la terminal contra la API de acciones.
//
// Uso:
//
//	obrasctl [-url http://localhost:8080/exec] [-user ana@empresa.com] test
//	obrasctl materials [categoria]
//	obrasctl search <texto> [start] [limit]
//	obrasctl increment <sku> <delta> [motivo]
//
// Sin -url se usa CLIENT_BASE_URL.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/jhoicas/Obras-api/pkg/client"
	"github.com/jhoicas/Obras-api/pkg/config"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "Cargar configuración: %v\n", err)
		return 1
	}

	fs := flag.NewFlagSet("obrasctl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	baseURL := fs.String("url", cfg.Client.BaseURL, "endpoint de acciones")
	user := fs.String("user", "", "usuario para la auditoría")
	timeout := fs.Duration("timeout", cfg.Client.Timeout, "timeout por llamada")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	opts := []client.Option{client.WithTimeout(*timeout)}
	if *user != "" {
		opts = append(opts, client.WithActor(cfg.Obras.ActorHeader, *user))
	}
	c := client.New(*baseURL, opts...)

	out, err := dispatch(context.Background(), c, fs.Args())
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		if errors.Is(err, errUsage) {
			return 2
		}
		return 1
	}
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		fmt.Fprintf(stderr, "Escribir salida: %v\n", err)
		return 1
	}
	return 0
}

var errUsage = errors.New("uso: obrasctl [flags] test | materials [categoria] | search <texto> [start] [limit] | increment <sku> <delta> [motivo]")

func dispatch(ctx context.Context, c *client.Client, args []string) (any, error) {
	if len(args) == 0 {
		return nil, errUsage
	}
	switch args[0] {
	case "test":
		return c.Test(ctx)

	case "materials":
		category := ""
		if len(args) > 1 {
			category = args[1]
		}
		return c.Materials(ctx, category)

	case "search":
		if len(args) < 2 {
			return nil, errUsage
		}
		start, limit := 0, 0
		if len(args) > 2 {
			start, _ = strconv.Atoi(args[2])
		}
		if len(args) > 3 {
			limit, _ = strconv.Atoi(args[3])
		}
		return c.Search(ctx, args[1], start, limit)

	case "increment":
		if len(args) < 3 {
			return nil, errUsage
		}
		delta, err := strconv.ParseInt(args[2], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("delta inválido %q: %w", args[2], err)
		}
		reason := ""
		if len(args) > 3 {
			reason = args[3]
		}
		qty, err := c.Increment(ctx, args[1], delta, reason)
		if err != nil {
			return nil, err
		}
		return map[string]any{"sku": args[1], "newQty": qty}, nil
	}
	return nil, errUsage
}
