// Package storage publishes media chunks so the remote inference service
// can fetch them by URL.
//
// # Backends
//
//   - storage/local: files under the uploads directory, served by the HTTP
//     server under the public domain URL
//   - storage/s3: Amazon S3 and S3-compatible storage, optionally presigned
//
// Backends register themselves with RegisterFactory from an init function;
// import the backend package for its side effect before calling New.
//
// # Configuration
//
//	storage:
//	  provider: "local"
//	  base_path: "uploads"
//	  public_url: "https://scribe.example.com"
package storage
