// Package qbm25 embeds the qbm25 search engine in a Go program: BM25 full-text
// retrieval over Redis with an optional numeric-proximity rescoring script.
//
// Documents carry free text plus positionally aligned unit/value attributes. A
// query may name the qbm25 script, which boosts each BM25 hit by how close its
// values in the requested unit are to a target amount.
//
//	client, _ := qbm25.New(ctx, qbm25.WithRedis("localhost:6379", ""))
//	defer client.Close()
//
//	_, _ = client.Collections().Ensure(ctx, "products")
//	_, _ = client.Documents("products").Upsert(ctx, qbm25.Document{
//	    ID:      "bolt-m8",
//	    Content: "steel bolt m8",
//	    Attrs:   []qbm25.Attr{{Unit: "kg", Value: 5}},
//	})
//
//	hits, _ := client.Search("products").
//	    Query("bolt").
//	    Script(qbm25.QBM25(qbm25.QBM25Params{
//	        Handler: qbm25.HandlerEqual, Unit: "kg", Amount: 5, Weight: 1,
//	    })).
//	    Limit(10).
//	    Do(ctx)
package qbm25
