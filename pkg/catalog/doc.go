// Package catalog provides an embedded client for the facet engine: a
// Redis-backed listing store, taxonomy administration and filter-driven
// search wired behind one facade, without running the HTTP server.
//
//	client, _ := catalog.New(ctx, catalog.WithRedis("localhost:6379", ""))
//	defer client.Close()
//
//	client.Registry().Register(facet.NewKeyword("keyword"))
//	client.Registry().Register(facet.NewRange("price", "price"))
//	_ = client.EnsureIndex(ctx, []string{"listing_category"})
//
//	page, _ := client.Search(ctx, facet.Params{
//	    "q_keyword":   {"coffee"},
//	    "q_price_max": {"20"},
//	}, 1, 20)
package catalog
