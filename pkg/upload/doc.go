// Package upload stores images for embedding in posts, columns and user
// profiles. The APIUploader posts a multipart form to the blog API's
// /upload endpoint; the S3Uploader writes directly into a bucket for
// self-hosted deployments. Both return the server-shaped Image record.
package upload
