package main

import (
	"context"
	"flag"
	"log"

	"talent-match/internal/config"
	"talent-match/internal/embedding"
	"talent-match/internal/graph"
	"talent-match/internal/storage"
)

// Backfills vectors for graph nodes created before embedding generation was
// wired into the pipeline, or whose embedding run failed.
func main() {
	var (
		dryRun = flag.Bool("dry-run", false, "count pending nodes without embedding them")
		limit  = flag.Int("limit", 200, "maximum nodes to embed per node type")
	)
	flag.Parse()

	cfg := config.LoadConfig()
	if cfg.DatabaseURL == "" {
		log.Fatal("set DATABASE_URL environment variable")
	}
	if cfg.OpenAIAPIKey == "" && !*dryRun {
		log.Fatal("set OPENAI_API_KEY environment variable")
	}

	db, err := storage.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("db open:", err)
	}
	defer db.Close()

	ctx := context.Background()
	svc := embedding.NewService(cfg.OpenAIAPIKey, db.GetConnection())

	for _, nodeType := range []string{graph.NodeJob, graph.NodeCandidate} {
		if *dryRun {
			var pending int
			err := db.GetConnection().QueryRowContext(ctx,
				`SELECT COUNT(*) FROM graph_nodes WHERE node_type = $1 AND embedding IS NULL`,
				nodeType,
			).Scan(&pending)
			if err != nil {
				log.Fatalf("count %s nodes: %v", nodeType, err)
			}
			log.Printf("[Backfill] %d %s nodes pending", pending, nodeType)
			continue
		}

		embedded, err := svc.EmbedAllPending(ctx, nodeType, *limit)
		if err != nil {
			log.Fatalf("backfill %s nodes: %v", nodeType, err)
		}
		log.Printf("[Backfill] Embedded %d %s nodes", embedded, nodeType)
	}
}
