// Package persistence provides the codecs that store adapters use to turn records into bytes.
//
// Every adapter (memory, file, redis, sql) accepts a Codec, so encryption at rest is
// a matter of passing an EncryptedCodec instead of the default JSON one.
package persistence
