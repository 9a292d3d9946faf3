package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/solidarios/api/internal/category"
	"github.com/solidarios/api/internal/config"
	"github.com/solidarios/api/internal/db"
	"github.com/solidarios/api/internal/repo"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})

	file := flag.String("file", "seed.yaml", "arquivo YAML com categorias e usuários")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config inválida")
	}

	raw, err := os.ReadFile(*file)
	if err != nil {
		log.Fatal().Err(err).Str("file", *file).Msg("não foi possível ler o seed")
	}
	seed, err := parseSeed(raw)
	if err != nil {
		log.Fatal().Err(err).Msg("seed inválido")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DBDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("não foi possível conectar ao banco")
	}
	defer pool.Close()

	res, err := apply(ctx, seed, category.NewRepository(pool), repo.New(pool))
	if err != nil {
		log.Fatal().Err(err).Msg("falha ao aplicar seed")
	}
	fmt.Printf("categorias criadas: %d, usuários criados: %d, ignorados: %d\n", res.Categories, res.Users, res.Skipped)
}
