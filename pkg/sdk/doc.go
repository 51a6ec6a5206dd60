// Package semdex is an in-process client for the semdex semantic document index,
// backed by Redis (Query Engine) or Qdrant.
//
// Documents are free text plus a JSON-like metadata map. Submissions without
// content, with blank content or longer than the embedding model allows are
// dropped on ingest; the rest are embedded and stored in one batch.
//
//	client, err := semdex.New(ctx,
//	    semdex.WithRedis("localhost:6379", ""),
//	    semdex.WithEmbedder(myEmbedder),
//	    semdex.WithFilterField("artist", semdex.FieldTag),
//	)
//	if err != nil { ... }
//	defer client.Close()
//
//	docs, _ := client.AddDocuments(ctx, []semdex.Submission{
//	    semdex.Text("la la la", map[string]any{"artist": "X"}),
//	})
//	hits, _ := client.SearchByField(ctx, "la", 5, 0.5, "artist", "X")
//	deleted, _ := client.Delete(ctx, []string{docs[0].ID})
package semdex
