// Package indicbot embeds the legal search pipeline in a Go program without
// running the HTTP service.
//
//	client, err := indicbot.New(ctx,
//	    indicbot.WithPinecone(os.Getenv("PINECONE_API_KEY"), "legal-documents"),
//	    indicbot.WithHuggingFace(os.Getenv("HF_API_TOKEN"), ""),
//	)
//	defer client.Close()
//
//	res, _ := client.Query(ctx, "किरायेदार को बेदखल करने का नोटिस", indicbot.Language("hi"))
//	fmt.Println(res.TopResult.TitleNative)
//
//	_, _ = client.Ingest(ctx, []indicbot.Row{{Query: "anticipatory bail conditions"}})
package indicbot
