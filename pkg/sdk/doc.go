// Package recommender embeds the assessment recommender in a Go program
// without running the HTTP service.
//
// The client talks to Redis or Valkey with the search module, embeds text
// through a caller-supplied Embedder and optionally asks a Generator for
// short AI insights per result.
//
//	client, err := recommender.New(ctx,
//	    recommender.WithValkey("localhost:6379", ""),
//	    recommender.WithEmbedder(myEmbedder),
//	    recommender.WithVectorDimensions(384),
//	)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	if _, err := client.IndexSnapshot(ctx, "data/shl_assessments_complete.json"); err != nil {
//	    return err
//	}
//	recs, err := client.Recommend(ctx, "Java developer with stakeholder skills", false)
package recommender
