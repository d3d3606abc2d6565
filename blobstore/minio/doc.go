// Package minio stores mapped files in MinIO or any S3-compatible server
// through the MinIO client.
//
// # Basic Usage
//
//	store, err := minio.Dial(minio.Config{
//	    Endpoint:  "localhost:9000",
//	    AccessKey: "minioadmin",
//	    SecretKey: "minioadmin",
//	    Bucket:    "my-bucket",
//	    Prefix:    "mmaps/",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	f, err := blobstore.Load(ctx, store, "index.bin")
//
// NewStore wraps a client that is already configured.
//
// Reads are ranged GETs, so a Blob never downloads more than asked for.
// Create streams through an io.Pipe; call Close to finish the upload or
// Abort to drop it.
package minio
