package upstream

import "context"

// ObjectSigner issues a one-time write URL for an object plus the durable
// public URL at which the object is readable after the write.
type ObjectSigner interface {
	SignPut(ctx context.Context, objectKey, contentType string) (putURL, publicURL string, err error)
}
