// Package s3 stores mapped files in Amazon S3.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("mmaps/"),
//	    s3.WithRegion("us-east-1"),
//	)
//
//	f, err := blobstore.Load(ctx, store, "index.bin")
//
// # Features
//
//   - Range reads for partial fetches
//   - Multipart uploads through the upload manager for Create
//   - Automatic pagination for listing
//   - WithEndpoint for S3-compatible servers
package s3
