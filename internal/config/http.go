package config

const (
	HCType           = "Content-Type"
	HAcceptEncoding  = "Accept-Encoding"
	HContentEncoding = "Content-Encoding"

	CTypeJSON = "application/json"

	EncodingZstd = "zstd"
	EncodingGzip = "gzip"
)
