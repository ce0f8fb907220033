// seed importa el catálogo de materiales desde un CSV al backend configurado
// (STORAGE_BACKEND). La primera fila es la cabecera; se aceptan los mismos nombres
// de columna que en addMaterial (SKU|code, Descrição|name, Unidade|unit, ...).
//
// Uso: go run ./cmd/seed [-latin1] [-sep ';'] materiais.csv
// Los SKU ya existentes se omiten.
package main

import (
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/Obras-api/internal/application/dto"
	"github.com/jhoicas/Obras-api/internal/application/records"
	"github.com/jhoicas/Obras-api/internal/application/usecase"
	"github.com/jhoicas/Obras-api/internal/domain"
	"github.com/jhoicas/Obras-api/internal/infrastructure/storage"
	"github.com/jhoicas/Obras-api/pkg/config"
	"github.com/jhoicas/Obras-api/pkg/logger"
)

func main() {
	latin1 := flag.Bool("latin1", false, "el CSV está en ISO-8859-1 (exportado desde Excel)")
	sep := flag.String("sep", ",", "separador de columnas")
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "uso: seed [-latin1] [-sep ';'] materiais.csv")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	f, err := os.Open(flag.Arg(0))
	if err != nil {
		log.Fatal().Err(err).Msg("abrir CSV")
	}
	defer f.Close()

	var in io.Reader = f
	if *latin1 {
		in = transform.NewReader(f, charmap.ISO8859_1.NewDecoder())
	}

	ctx := context.Background()
	backend, err := storage.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("abrir almacenamiento")
	}
	defer backend.Close()
	if err := storage.Bootstrap(ctx, backend.Store); err != nil {
		log.Fatal().Err(err).Msg("crear hojas")
	}

	comma := ','
	if r := []rune(*sep); len(r) > 0 {
		comma = r[0]
	}

	materials := usecase.NewMaterialUseCase(backend.Store, usecase.NewAuditLog(backend.Store, cfg.App.Location(), log, nil))
	added, skipped, err := importCSV(ctx, in, comma, materials, log)
	if err != nil {
		log.Fatal().Err(err).Msg("importar CSV")
	}
	fmt.Printf("Importados %d materiales, %d omitidos\n", added, skipped)
}

// importCSV agrega una fila por material. Duplicados e inválidos se omiten con un aviso.
func importCSV(ctx context.Context, in io.Reader, sep rune, materials *usecase.MaterialUseCase, log *logger.Logger) (added, skipped int, err error) {
	r := csv.NewReader(in)
	r.Comma = sep
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return 0, 0, fmt.Errorf("leer cabecera: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	for line := 2; ; line++ {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			return added, skipped, nil
		}
		if err != nil {
			return added, skipped, fmt.Errorf("línea %d: %w", line, err)
		}
		p := records.Payload{}
		for k, v := range records.ToRecord(header, row) {
			p[k] = v
		}
		req := dto.AddMaterialRequestFromPayload(p)
		if req.SKU == "" {
			continue
		}
		if _, err := materials.Add(ctx, req); err != nil {
			if errors.Is(err, domain.ErrDuplicate) || errors.Is(err, domain.ErrInvalidInput) {
				log.Warn().Int("line", line).Str("sku", req.SKU).Err(err).Msg("material omitido")
				skipped++
				continue
			}
			return added, skipped, fmt.Errorf("línea %d: %w", line, err)
		}
		added++
	}
}
